package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"neocafe-assistant/chat-svc/internal/metrics"
)

// NewRouter assembles the full HTTP surface: the JSON API, the metrics
// endpoint and the websocket upgrade path, wrapped in permissive CORS for the
// browser widget.
func NewRouter(h *Handler, wsHandler http.Handler) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.Use(countRequests)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if wsHandler != nil {
		r.Handle("/ws", wsHandler)
	}
	return cors.Default().Handler(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// upgrade requests need the raw writer for hijacking
		if r.Header.Get("Upgrade") != "" {
			next.ServeHTTP(w, r)
			return
		}
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
