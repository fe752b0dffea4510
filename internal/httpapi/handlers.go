package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
)

// maxBodyBytes bounds request bodies; a reminder record is tiny.
const maxBodyBytes = 1 << 20

// Store is the reminder persistence the handlers need.
type Store interface {
	List(ctx context.Context) ([]reminder.Reminder, error)
	GetByID(ctx context.Context, id int64) (*reminder.Reminder, error)
	Create(ctx context.Context, d reminder.Draft) (*reminder.Reminder, error)
	Replace(ctx context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Renewer runs a renewal scan.
type Renewer interface {
	Run(ctx context.Context, today reminder.Date) (reminder.Result, error)
}

// Checker sends the upcoming reminder digest.
type Checker interface {
	Check(ctx context.Context, today reminder.Date, channel string) (notify.Report, error)
}

// Handler provides HTTP transport for reminder operations.
type Handler struct {
	store   Store
	renewer Renewer
	checker Checker
	today   func() reminder.Date
}

func NewHandler(store Store, renewer Renewer, checker Checker, today func() reminder.Date) *Handler {
	return &Handler{store: store, renewer: renewer, checker: checker, today: today}
}

// Health GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		WriteJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "down", "message": err.Error()})
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ListReminders GET /api/reminders
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	rs, err := h.store.List(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := reminder.ParseStatus(s)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		rs = reminder.FilterByStatus(rs, status, today)
	}
	WriteJSON(w, r, http.StatusOK, reminder.Views(rs, today))
}

// CreateReminder POST /api/reminders
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	d, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	created, err := h.store.Create(r.Context(), d)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusCreated, reminder.View{Reminder: *created, Status: reminder.Classify(*created, h.today())})
}

// GetReminder GET /api/reminders/{id}
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rem, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, reminder.View{Reminder: *rem, Status: reminder.Classify(*rem, today)})
}

// ReplaceReminder PUT /api/reminders/{id}
func (h *Handler) ReplaceReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	d, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	updated, err := h.store.Replace(r.Context(), id, d)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, reminder.View{Reminder: *updated, Status: reminder.Classify(*updated, h.today())})
}

// DeleteReminder DELETE /api/reminders/{id}
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats GET /api/reminders/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	rs, err := h.store.List(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, reminder.ComputeStats(rs, today))
}

// Upcoming GET /api/reminders/upcoming
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	rs, err := h.store.List(r.Context())
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	upcoming := reminder.Upcoming(rs, today)
	WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"names":     reminder.UpcomingNames(rs, today),
		"reminders": reminder.Views(upcoming, today),
		"count":     len(upcoming),
	})
}

// Renew POST /api/reminders/renew
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	res, err := h.renewer.Run(r.Context(), today)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, res.Report())
}

// CheckAndNotify POST /api/reminders/check-and-notify?channel=
func (h *Handler) CheckAndNotify(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, r.URL.Query().Get("channel"))
}

func (h *Handler) checkChannel(channel string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.check(w, r, channel)
	}
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, channel string) {
	today, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	report, err := h.checker.Check(r.Context(), today, channel)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	message := "no upcoming reminders"
	if report.Count > 0 {
		message = fmt.Sprintf("found %d upcoming reminders, notification attempted", report.Count)
	}
	WriteJSON(w, r, http.StatusOK, struct {
		notify.Report
		Message string `json:"message"`
	}{report, message})
}

// dateParam resolves the evaluation date: ?today=YYYY-MM-DD or the clock.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (reminder.Date, bool) {
	v := r.URL.Query().Get("today")
	if v == "" {
		return h.today(), true
	}
	d, err := reminder.ParseDate(v)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "today: "+err.Error())
		return reminder.Date{}, false
	}
	return d, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid reminder id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request) (reminder.Draft, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "failed to read body")
		return reminder.Draft{}, false
	}
	d, err := reminder.DecodeDraft(body)
	if err != nil {
		WriteDomainError(w, r, err)
		return reminder.Draft{}, false
	}
	return d, true
}
