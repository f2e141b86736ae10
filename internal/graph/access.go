// Package graph exposes the API as a single GraphQL schema. Every field
// carries an access annotation checked before its resolver runs, so a
// reader can see each operation's exposure in one place.
package graph

import (
	"context"
	"fmt"
	"time"

	"packtrail/internal/middleware"
	"packtrail/internal/models"
	"packtrail/internal/observability"

	"github.com/graphql-go/graphql"
)

// access is a field's exposure level.
type access int

const (
	// public fields resolve for anonymous callers. Shared reads live here:
	// possession of the link is the gate, not token identity.
	public access = iota
	// authenticated fields need a valid token.
	authenticated
	// admin fields additionally need the admin flag on the account.
	admin
)

// viewer returns the authenticated user ID from the request context.
func viewer(ctx context.Context) (uint, bool) {
	uid, ok := ctx.Value(middleware.UserIDKey).(uint)
	return uid, ok && uid != 0
}

// rateRule throttles one field. Credential-guessing surfaces fail closed so a
// Redis outage cannot turn into a brute-force window; the rest fail open.
type rateRule struct {
	limit  int
	window time.Duration
	policy middleware.FailPolicy
}

var rateRules = map[string]rateRule{
	"login":                {limit: 10, window: time.Minute, policy: middleware.FailClosed},
	"requestPasswordReset": {limit: 5, window: time.Minute, policy: middleware.FailClosed},
	"resetPassword":        {limit: 10, window: time.Minute, policy: middleware.FailClosed},
	"register":             {limit: 5, window: time.Minute, policy: middleware.FailOpen},
	"addBugReport":         {limit: 10, window: time.Minute, policy: middleware.FailOpen},
}

// throttle enforces the field's rate rule, keyed by viewer when authenticated
// and by client IP otherwise.
func (r *Resolver) throttle(ctx context.Context, name string) error {
	rule, ok := rateRules[name]
	if !ok {
		return nil
	}

	id := "anon"
	if uid, ok := viewer(ctx); ok {
		id = fmt.Sprintf("user:%d", uid)
	} else if ip, ok := ctx.Value(middleware.ClientIPKey).(string); ok && ip != "" {
		id = "ip:" + ip
	}

	allowed, err := middleware.CheckRateLimit(ctx, r.RDB, name, id, rule.limit, rule.window)
	switch {
	case err != nil && rule.policy == middleware.FailClosed:
		return models.NewUpstreamError("rate limit store unavailable", err)
	case err != nil:
		return nil
	case !allowed:
		return models.NewRateLimitedError()
	}
	return nil
}

// gqlError carries an application error code into the GraphQL error
// extensions, where clients dispatch on it.
type gqlError struct {
	err  *models.AppError
	code string
}

func (e *gqlError) Error() string { return e.err.Message }

func (e *gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// wrapError attaches the error code extension. Non-AppError failures are
// masked as internal errors so database details never reach clients.
func wrapError(err error) error {
	if appErr, ok := err.(*models.AppError); ok {
		return &gqlError{err: appErr, code: appErr.Code}
	}
	return &gqlError{err: models.NewInternalError(err), code: models.CodeInternal}
}

// guard wraps a resolver with its access check and metrics.
func (r *Resolver) guard(name string, level access, resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		defer observability.ObserveResolver(name, time.Now())

		if level >= authenticated {
			uid, ok := viewer(p.Context)
			if !ok {
				observability.GraphQLErrors.WithLabelValues(name, models.CodeNotAuthenticated).Inc()
				return nil, wrapError(models.NewNotAuthenticatedError())
			}
			if level == admin {
				user, err := r.Auth.GetUser(p.Context, uid)
				if err != nil || !user.IsAdmin {
					observability.GraphQLErrors.WithLabelValues(name, models.CodeNotAuthorized).Inc()
					return nil, wrapError(models.NewNotAuthorizedError())
				}
			}
		}

		if err := r.throttle(p.Context, name); err != nil {
			wrapped := wrapError(err)
			observability.GraphQLErrors.WithLabelValues(name, wrapped.(*gqlError).code).Inc()
			return nil, wrapped
		}

		out, err := resolve(p)
		if err != nil {
			wrapped := wrapError(err)
			observability.GraphQLErrors.WithLabelValues(name, wrapped.(*gqlError).code).Inc()
			return nil, wrapped
		}
		return out, nil
	}
}

// mustViewer reads the viewer after guard has verified authentication.
func mustViewer(ctx context.Context) uint {
	uid, _ := viewer(ctx)
	return uid
}
