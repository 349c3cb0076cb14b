package middleware

import (
	"net/http"

	"github.com/hamed0406/pollrelay/internal/domain"
	"github.com/hamed0406/pollrelay/internal/poll"
)

const maxRequestIDLen = 64

// RequestID tags every request with an id, echoes it in X-Request-ID and
// makes it the poll sequence id. A caller-supplied X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.SequenceID(r.Header.Get("X-Request-ID"))
		if id == "" || len(id) > maxRequestIDLen {
			id = poll.NewSequenceID()
		}
		w.Header().Set("X-Request-ID", string(id))
		next.ServeHTTP(w, r.WithContext(poll.WithSequenceID(r.Context(), id)))
	})
}
