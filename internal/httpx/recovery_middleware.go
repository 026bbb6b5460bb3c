package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"bookfinder/internal/logger"
)

func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						logger.String("request_id", RequestIDFrom(r)),
						logger.String("panic", fmt.Sprint(rec)),
						logger.String("stack", string(debug.Stack())),
					)

					if sw, ok := w.(*statusWriter); ok && sw.wroteHeader() {
						return
					}
					JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
