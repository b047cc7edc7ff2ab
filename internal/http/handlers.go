package http

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

type indexData struct {
	Today        string
	Categories   []core.Category
	Transactions []transactionRow
	Summary      summaryView
	Error        string
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether templates are loaded and the ledger can be
// read from its store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storageContext(r)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	l, version, err := s.session.Snapshot(ctx)
	if err != nil {
		checks["ledger"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = map[string]interface{}{
			"status":  "ok",
			"records": l.Len(),
			"version": version,
		}
	}

	stats := s.summaries.Stats()
	checks["summary_cache"] = map[string]interface{}{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	}

	NewHTMXResponse().Status(code).BodyJSON(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := s.storageContext(r)
	defer cancel()

	data := indexData{
		Today:      core.DateOf(s.now()).String(),
		Categories: core.Categories(),
	}
	code := http.StatusOK
	l, err := s.session.Ledger(ctx)
	if err == nil {
		var sum core.Summary
		sum, err = s.summary(ctx)
		data.Summary = newSummaryView(sum)
	}
	if err != nil {
		s.requestLogger(r).ErrorContext(ctx, "Failed to load ledger",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		code, data.Error = statusFor(err)
	}
	data.Transactions = mostRecentFirst(l)

	s.render(w, r, code, "index.html", data, func() string {
		return fmt.Sprintf("Ledger: %d expenses, total %s", data.Summary.Count, data.Summary.Total)
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	logger := s.requestLogger(r)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		logger.WarnContext(r.Context(), "Failed to parse request body", log.FieldError, err)
		BadRequestError("Invalid request format.").Write(w)
		return
	}

	rec, err := ParseExpense(parser)
	if err != nil {
		logger.WarnContext(r.Context(), "Expense rejected", log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}

	ctx, cancel := s.storageContext(r)
	defer cancel()
	added, index, err := s.session.Add(ctx, rec)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to save expense",
			log.FieldOperation, log.OpAdd,
			log.FieldCategory, rec.Category.String(),
			log.FieldAmountCents, rec.Amount.Cents,
			log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}

	msg := fmt.Sprintf("Added %s %s (%s)", added.Category, added.Amount, added.Date)
	if added.Item != "" {
		msg = fmt.Sprintf("Added %s: %s %s (%s)", added.Category, added.Item, added.Amount, added.Date)
	}
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerExpenseAdded(added.ID, index).
		TriggerFormReset().
		TriggerLedgerChanged().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	logger := s.requestLogger(r)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format.").Write(w)
		return
	}

	target, err := ParseDeleteTarget(parser)
	if err != nil {
		logger.WarnContext(r.Context(), "Delete rejected", log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}

	ctx, cancel := s.storageContext(r)
	defer cancel()

	var removed core.Record
	index := target.Index
	if target.ID != "" {
		removed, index, err = s.session.Delete(ctx, target.ID)
	} else {
		removed, err = s.session.DeleteAt(ctx, target.Index)
	}
	if err != nil {
		logger.Log(ctx, levelFor(err), "Failed to delete expense",
			log.FieldOperation, log.OpDelete,
			log.FieldRecordID, target.ID,
			log.FieldIndex, target.Index,
			log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}

	msg := fmt.Sprintf("Deleted %s %s (%s)", removed.Category, removed.Amount, removed.Date)
	NewHTMXResponse().
		TriggerExpenseDeleted(removed.ID, index).
		TriggerLedgerChanged().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// handleTransactions renders the list partial, most recent first.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := s.storageContext(r)
	defer cancel()

	l, err := s.session.Ledger(ctx)
	if err != nil {
		s.requestLogger(r).ErrorContext(ctx, "Failed to load ledger", log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}
	rows := mostRecentFirst(l)
	s.render(w, r, http.StatusOK, "transactions", rows, func() string {
		return fmt.Sprintf("%d expenses", len(rows))
	})
}

// handleSummary renders total, category bars and month bars.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := s.storageContext(r)
	defer cancel()

	sum, err := s.summary(ctx)
	if err != nil {
		s.requestLogger(r).ErrorContext(ctx, "Failed to summarise ledger",
			log.FieldOperation, log.OpSummary,
			log.FieldError, err)
		ErrorFor(err).Write(w)
		return
	}
	view := newSummaryView(sum)
	s.render(w, r, http.StatusOK, "summary", view, func() string {
		return "Total: " + view.Total
	})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	ctx, cancel := s.storageContext(r)
	defer cancel()

	sum, err := s.summary(ctx)
	if err != nil {
		s.requestLogger(r).ErrorContext(ctx, "Failed to summarise ledger", log.FieldError, err)
		code, msg := statusFor(err)
		NewHTMXResponse().Status(code).BodyJSON(map[string]string{"error": msg}).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(newSummaryJSON(sum)).Write(w)
}

// render executes the named template into a buffer so a failure can still
// produce a clean 500. Without templates the fallback text is sent.
func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data interface{}, fallback func() string) {
	if s.templates == nil {
		NewHTMXResponse().
			Status(code).
			BodyHTML(`<div class="placeholder">` + template.HTMLEscapeString(fallback()) + `</div>`).
			Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.requestLogger(r).ErrorContext(r.Context(), "Failed to render template",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		ErrorResponse(http.StatusInternalServerError, "Could not render page.").Write(w)
		return
	}
	NewHTMXResponse().Status(code).Body(buf.Bytes()).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// levelFor logs caller mistakes at warn and storage trouble at error.
func levelFor(err error) slog.Level {
	if code, _ := statusFor(err); code < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}
