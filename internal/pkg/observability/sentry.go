package observability

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global client. With an empty dsn it does nothing.
// The returned func flushes buffered events and must be called on shutdown.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CaptureRequestErr reports err tagged with the request it happened in.
func CaptureRequestErr(r *http.Request, route string, err error) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("route", route)
		sentry.CaptureException(err)
	})
}
