package observe

import (
	"context"
	"net/http"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// CorrelationIDHeader carries the identifier that ties an inbound request to
// the outbound calls made on its behalf.
const CorrelationIDHeader = "X-Correlation-ID"

type correlationKey struct{}

// WithCorrelationID returns a context carrying id. The logger attached to the
// context is extended with a correlationId field.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, correlationKey{}, id)

	logger := zerolog.Ctx(ctx).With().Str("correlationId", id).Logger()
	return logger.WithContext(ctx)
}

// CorrelationID returns the identifier stored in ctx, or the empty string.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Correlation is middleware that accepts the caller's correlation identifier
// or generates one, stores it in the request context, and echoes it on the
// response.
func Correlation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationIDHeader)
			if id == "" || len(id) > 128 {
				id = xid.New().String()
			}

			w.Header().Set(CorrelationIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
		})
	}
}
