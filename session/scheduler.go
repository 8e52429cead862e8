package session

import (
	"context"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// armTimerLocked schedules a refresh for refreshLead before the access
// token's encoded expiry, replacing any existing timer. An already-expired
// (or about-to-expire) token is refreshed immediately. Tokens without a
// readable exp claim are left to the 401 recovery path.
// Caller must hold m.mu.
func (m *Manager) armTimerLocked() {
	m.cancelTimerLocked()

	expiry, ok := tokenExpiry(m.accessToken)
	if !ok {
		log.Debug().Msg("access token has no readable expiry, scheduled refresh disabled")
		return
	}

	delay := expiry.Sub(m.nowTime()) - m.refreshLead
	if delay < 0 {
		delay = 0
	}

	m.timer = time.AfterFunc(delay, func() {
		if err := m.Refresh(context.Background()); err != nil {
			// The next 401 surfaces the failure through the recovery
			// middleware; here it is only logged.
			log.Warn().Err(err).Msg("scheduled token refresh failed")
		}
	})
	log.Debug().Dur("in", delay).Msg("token refresh scheduled")
}

// cancelTimerLocked stops a pending scheduled refresh. Caller must hold m.mu.
func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. The client holds no signing keys; expiry is only a scheduling
// hint, the server remains the authority.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
