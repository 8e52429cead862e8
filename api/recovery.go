package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SessionRefresher is the slice of the session manager the recovery
// decorator needs: renew the access token, or tear the session down.
type SessionRefresher interface {
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Recovery wraps a Doer with 401 handling: one refresh, one retry, then a
// hard authentication failure. All other errors pass through untouched.
type Recovery struct {
	next    Doer
	session SessionRefresher
}

// NewRecovery decorates next with the refresh-and-retry policy.
func NewRecovery(next Doer, session SessionRefresher) *Recovery {
	return &Recovery{next: next, session: session}
}

var _ Doer = (*Recovery)(nil)

// Do issues the request through the wrapped Doer. On a 401 it awaits one
// refresh and re-issues the original request exactly once; the retry picks
// up the renewed Authorization header from the token source. A failed
// refresh, or a second 401, forces logout and surfaces
// ErrAuthenticationFailed.
func (r *Recovery) Do(ctx context.Context, method, path string, body any, headers map[string]string) (json.RawMessage, error) {
	result, err := r.next.Do(ctx, method, path, body, headers)
	if err == nil || !IsStatus(err, http.StatusUnauthorized) {
		return result, err
	}

	// A 401 from the auth endpoints is a credential rejection, not an
	// expired access token; refreshing would recurse.
	if strings.HasPrefix(strings.TrimLeft(path, "/"), "auth/") {
		return result, err
	}

	log.Debug().Str("method", method).Str("path", path).Msg("401 received, attempting token refresh")

	if refreshErr := r.session.Refresh(ctx); refreshErr != nil {
		if logoutErr := r.session.Logout(ctx); logoutErr != nil {
			log.Warn().Err(logoutErr).Msg("logout after failed refresh")
		}
		return nil, errors.Wrap(ErrAuthenticationFailed, "token refresh rejected")
	}

	result, err = r.next.Do(ctx, method, path, body, headers)
	if IsStatus(err, http.StatusUnauthorized) {
		if logoutErr := r.session.Logout(ctx); logoutErr != nil {
			log.Warn().Err(logoutErr).Msg("logout after retried 401")
		}
		return nil, errors.Wrap(ErrAuthenticationFailed, "request unauthorized after refresh")
	}
	return result, err
}
