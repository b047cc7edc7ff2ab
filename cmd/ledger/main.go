package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
)

var version = "dev"

// app carries what every subcommand needs once the root command has
// resolved configuration.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+userMessage(err)))
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "Personal expense ledger",
		Long:          `Record dated, categorised expenses in a CSV file (or another store) and summarise them by category and month.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("backend", "", "data backend (csv, sqlite, memory, sheets)")
	flags.String("file", "", "CSV file used by the csv backend (default expenses.csv)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	_ = a.v.BindPFlag(config.KeyConfigFile, flags.Lookup("config"))
	_ = a.v.BindPFlag(config.KeyDataBackend, flags.Lookup("backend"))
	_ = a.v.BindPFlag(config.KeyCSVPath, flags.Lookup("file"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.deleteCmd(),
		a.summaryCmd(),
		a.serveCmd(),
	)
	return root
}

// init resolves configuration and logging. Unset flags fall through to
// the environment and defaults because BindPFlag only wins when a flag
// was changed.
func (a *app) init() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, a.errOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// openSession builds the configured store and a session over it. When
// AMQP is configured, saved snapshots are announced to the mirror worker;
// a broker that cannot be reached only costs the announcement.
func (a *app) openSession(ctx context.Context) (*services.Session, func(), error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(a.logger).Create(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []services.Option{services.WithLogger(a.logger)}
	var client *amqp.Client
	if a.cfg.AMQPURL != "" {
		client, err = amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			a.logger.WarnContext(ctx, "AMQP unavailable, snapshots will not be announced", log.FieldError, err)
		} else {
			opts = append(opts, services.WithPublisher(client))
		}
	}

	cleanup := func() {
		if client != nil {
			if err := client.Close(); err != nil {
				a.logger.Warn("Failed to close AMQP client", log.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			a.logger.Warn("Failed to close store", log.FieldError, err)
		}
	}
	return services.NewSession(res.Store, opts...), cleanup, nil
}

func userMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	return err.Error()
}
