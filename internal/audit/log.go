// Package audit records one structured entry per API request: who asked,
// which Partner Center calls were made on their behalf, and how any
// enhancement turned out.
package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/observe"
	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"
)

// Level is the level audit entries are written at. It sits above the
// standard levels so that audit entries are never filtered out.
const Level = zerolog.Level(20)

func init() {
	marshal := zerolog.LevelFieldMarshalFunc
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		if l == Level {
			return "audit"
		}
		return marshal(l)
	}
}

// Entry is the audit record for a single request. Handlers and the clients
// they call fill it in through Log.
type Entry struct {
	Method        string
	Path          string
	Status        int
	SourceIP      string
	UserAgent     string
	CorrelationID string

	Calls []UpstreamCall

	Operation     string
	Outcome       string
	DegradedCause string

	Error string

	mu sync.Mutex
}

// UpstreamCall is one Partner Center call made while serving the request.
type UpstreamCall struct {
	Endpoint string
	Status   int
	Duration time.Duration
	Error    string
}

func (c UpstreamCall) MarshalZerologObject(e *zerolog.Event) {
	e.Str("endpoint", c.Endpoint)
	if c.Status != 0 {
		e.Int("status", c.Status)
	}
	e.Dur("duration", c.Duration)
	if c.Error != "" {
		e.Str("error", c.Error)
	}
}

// RecordCall appends a call to the entry. It is safe to use from the
// concurrent sub-fetches of an enhancement.
func (e *Entry) RecordCall(call UpstreamCall) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, call)
}

// SetEnhancement records how an enhancement turned out. cause is empty
// unless the result was degraded.
func (e *Entry) SetEnhancement(operation, outcome, cause string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Operation = operation
	e.Outcome = outcome
	e.DegradedCause = cause
}

// AppendError adds msg to any error already recorded.
func (e *Entry) AppendError(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Error == "" {
		e.Error = msg
		return
	}
	e.Error = e.Error + "; " + msg
}

func (e *Entry) MarshalZerologObject(ev *zerolog.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev.Dict("request", zerolog.Dict().
		Str("method", e.Method).
		Str("path", e.Path).
		Int("status", e.Status).
		Str("sourceIP", e.SourceIP).
		Str("userAgent", e.UserAgent).
		Str("correlationId", e.CorrelationID),
	)

	newSection().
		objects("calls", e.Calls).
		attach(ev, "upstream")

	newSection().
		str("operation", e.Operation).
		str("outcome", e.Outcome).
		str("cause", e.DegradedCause).
		attach(ev, "enhancement")

	if e.Error != "" {
		ev.Str("error", e.Error)
	}
}

// Begin captures the request details.
func (e *Entry) Begin(r *http.Request) {
	e.Method = r.Method
	e.Path = r.URL.Path
	e.UserAgent = r.UserAgent()
	e.CorrelationID = observe.CorrelationID(r.Context())

	e.SourceIP = r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		e.SourceIP = host
	}
}

// End returns a function to be deferred: it writes the entry, including when
// the handler panics, and then lets any panic continue.
func (e *Entry) End(ctx context.Context) func() {
	return func() {
		r := recover()
		if r != nil {
			e.AppendError(fmt.Sprintf("panic: %v", r))
		}

		if e.Status == 0 {
			e.Status = http.StatusOK
		}

		zerolog.Ctx(ctx).WithLevel(Level).EmbedObject(e).Msg("audit_event")

		if r != nil {
			panic(r)
		}
	}
}

type key struct{}

// Context returns the entry held by ctx, adding a new one when there is none.
func Context(ctx context.Context) (context.Context, *Entry) {
	if e, ok := ctx.Value(key{}).(*Entry); ok {
		return ctx, e
	}

	e := &Entry{}
	return context.WithValue(ctx, key{}, e), e
}

// Log returns the entry for the current request. Outside a request audited by
// Middleware the entry is discarded.
func Log(ctx context.Context) *Entry {
	_, e := Context(ctx)
	return e
}

// Middleware writes an audit entry for every request it wraps.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, entry := Context(r.Context())
			entry.Begin(r)
			defer entry.End(ctx)()

			ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						if entry.Status == 0 {
							entry.Status = code
						}
						next(code)
					}
				},
			})

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
