package server

import (
	"context"
	"net/http"
	"time"

	"bookfinder/internal/httpx"
)

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz pings every probe. With no probes configured the server is always ready.
func readyz(probes []Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		for _, p := range probes {
			if err := p.Ping(ctx); err != nil {
				httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", p.Name+" not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
