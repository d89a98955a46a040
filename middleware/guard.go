package middleware

import (
	"context"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

type subjectContextKey struct{}

// SubjectFromContext returns the subject injected by [RequireSession].
func SubjectFromContext(ctx context.Context) (goSession.Subject, bool) {
	subj, ok := ctx.Value(subjectContextKey{}).(goSession.Subject)
	return subj, ok
}

// Activity returns middleware that records every inbound request as user
// activity, deferring the idle timeout. It never rejects a request.
func Activity(controller *goSession.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if controller != nil {
				controller.Touch()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns middleware that rejects requests with 401 while the
// controller is logged out, and otherwise records activity and injects the
// subject into the request context.
func RequireSession(controller *goSession.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if controller == nil || controller.State() == goSession.StateLoggedOut {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			controller.Touch()

			ctx := r.Context()
			if subj, ok := controller.Subject(); ok {
				ctx = context.WithValue(ctx, subjectContextKey{}, subj)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
