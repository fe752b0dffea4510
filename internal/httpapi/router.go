// Package httpapi exposes the reminder tracker over HTTP.
package httpapi

import (
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"
	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/rs/zerolog"
)

// NewRouter registers every route of h behind panic recovery and access
// logging.
func NewRouter(h *Handler, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	for _, mw := range Logging(log) {
		r.Use(mux.MiddlewareFunc(mw))
	}
	r.Use(Recovery)

	api := r.PathPrefix("/api").Subrouter()
	handle(api, "/health", methods{http.MethodGet: h.Health})

	rem := api.PathPrefix("/reminders").Subrouter()
	handle(rem, "", methods{
		http.MethodGet:  h.ListReminders,
		http.MethodPost: h.CreateReminder,
	})
	handle(rem, "/stats", methods{http.MethodGet: h.Stats})
	handle(rem, "/upcoming", methods{http.MethodGet: h.Upcoming})
	handle(rem, "/renew", methods{http.MethodPost: h.Renew})
	handle(rem, "/check-and-notify", methods{http.MethodPost: h.CheckAndNotify})
	handle(rem, "/check-and-email", methods{http.MethodPost: h.checkChannel(config.ChannelEmail)})
	handle(rem, "/check-and-dingtalk", methods{http.MethodPost: h.checkChannel(config.ChannelDingTalk)})
	handle(rem, "/{id:[0-9]+}", methods{
		http.MethodGet:    h.GetReminder,
		http.MethodPut:    h.ReplaceReminder,
		http.MethodDelete: h.DeleteReminder,
	})

	return r
}

// methods maps an HTTP method to its handler.
type methods map[string]http.HandlerFunc

// handle registers one route per method on path, followed by a fallback
// on the same path answering 405 with the Allow header regardless of the
// sibling routes registered after it.
func handle(r *mux.Router, path string, m methods) {
	allowed := slices.Sorted(maps.Keys(m))
	for _, method := range allowed {
		r.HandleFunc(path, m[method]).Methods(method)
	}
	allow := strings.Join(allowed, ", ")
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", allow)
		WriteError(w, req, http.StatusMethodNotAllowed, req.Method+" not allowed, use "+allow)
	})
}
