// Package http serves the ledger web UI: the entry page, HTMX partials for
// the transaction list and summary, and a JSON summary endpoint.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Notification durations in milliseconds, read by static/app.js.
const (
	successNotificationMs = 3000
	errorNotificationMs   = 5000
)

// HTMXResponseBuilder assembles a response in one chain: status, extra
// headers, body and the events announced through HX-Trigger.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    http.Header
}

// recordEvent is the payload of expense:added and expense:deleted.
type recordEvent struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

// NewHTMXResponse starts a 200 response with no triggers.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   map[string]interface{}{},
		statusCode: http.StatusOK,
		headers:    http.Header{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger queues an HX-Trigger event. A later call with the same name
// replaces the payload.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerExpenseAdded announces the new record's ID and position.
func (b *HTMXResponseBuilder) TriggerExpenseAdded(recordID string, index int) *HTMXResponseBuilder {
	return b.Trigger("expense:added", recordEvent{ID: recordID, Index: index})
}

// TriggerExpenseDeleted announces the removed record's ID and the position
// it held.
func (b *HTMXResponseBuilder) TriggerExpenseDeleted(recordID string, index int) *HTMXResponseBuilder {
	return b.Trigger("expense:deleted", recordEvent{ID: recordID, Index: index})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// TriggerLedgerChanged tells the list and summary partials to reload.
func (b *HTMXResponseBuilder) TriggerLedgerChanged() *HTMXResponseBuilder {
	return b.Trigger("ledger:changed", struct{}{})
}

// NotificationType selects the toast style in the page script.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification queues a show-notification event.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", notification{Type: kind, Message: message, Duration: durationMs})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, successNotificationMs)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, errorNotificationMs)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

// Body sets raw bytes; the caller is responsible for Content-Type.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	return b.Body([]byte(content))
}

// BodyHTML sets an HTML fragment. The string is sent as is, so callers
// escape anything user supplied.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	return b.Body([]byte(html))
}

// BodyJSON encodes v. An encoding failure turns the response into a plain
// 500.
func (b *HTMXResponseBuilder) BodyJSON(v interface{}) *HTMXResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		b.headers.Set("Content-Type", "text/plain; charset=utf-8")
		return b.BodyString("encode response")
	}
	b.headers.Set("Content-Type", "application/json")
	return b.Body(append(data, '\n'))
}

// Write flushes headers, HX-Trigger, status and body to w.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.headers {
		h[name] = values
	}
	if len(b.triggers) > 0 {
		if encoded, err := json.Marshal(b.triggers); err == nil {
			h.Set("HX-Trigger", string(encoded))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message, escaped, inside an error div.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// ErrorFor picks the status and user-facing message for a ledger error and
// raises an error notification alongside the inline message.
func ErrorFor(err error) *HTMXResponseBuilder {
	code, msg := statusFor(err)
	return ErrorResponse(code, msg).TriggerErrorNotification(msg)
}

// MethodNotAllowedError answers 405 with the Allow header set.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
