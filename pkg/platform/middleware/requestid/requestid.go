package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"loanapproval/pkg/requestcontext"
)

// Header carries the correlation id in both directions.
const Header = "X-Request-Id"

// Middleware propagates the caller's request id or mints a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
