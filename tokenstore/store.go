package tokenstore

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Storage keys, namespaced to avoid colliding with anything else sharing the
// same medium. The names mirror what the browser client persisted.
const (
	keyPrefix       = "myfintrack_"
	accessTokenKey  = keyPrefix + "accessToken"
	refreshTokenKey = keyPrefix + "refreshToken"
	userKey         = keyPrefix + "user"
)

// Store persists the access/refresh token pair and the cached user profile.
// Write failures are logged and swallowed: losing durability degrades the
// session to memory-only, it must never fail the login that produced the
// tokens.
type Store struct {
	repo Repo
}

// New creates a Store over the given key-value repo.
func New(repo Repo) *Store {
	return &Store{repo: repo}
}

// Save writes both tokens. The refresh token is written first so that a torn
// write can never leave an access token behind without the refresh token it
// was issued with.
func (s *Store) Save(access, refresh string) {
	if err := s.repo.Set(refreshTokenKey, refresh); err != nil {
		log.Warn().Err(err).Msg("token store unavailable, refresh token not persisted")
		return
	}
	if err := s.repo.Set(accessTokenKey, access); err != nil {
		log.Warn().Err(err).Msg("token store unavailable, access token not persisted")
	}
}

// Load reads the persisted token pair. A pair with either half missing is
// treated as absent.
func (s *Store) Load() (access, refresh string, ok bool) {
	access, accessOK, err := s.repo.Get(accessTokenKey)
	if err != nil {
		log.Warn().Err(err).Msg("token store read failed")
		return "", "", false
	}
	refresh, refreshOK, err := s.repo.Get(refreshTokenKey)
	if err != nil {
		log.Warn().Err(err).Msg("token store read failed")
		return "", "", false
	}
	if !accessOK || !refreshOK || access == "" || refresh == "" {
		return "", "", false
	}
	return access, refresh, true
}

// Clear removes both tokens and the cached profile. Idempotent: clearing an
// already-empty store is not an error.
func (s *Store) Clear() {
	for _, key := range []string{accessTokenKey, refreshTokenKey, userKey} {
		if err := s.repo.Delete(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("token store delete failed")
		}
	}
}

// SaveUser caches the profile record alongside the tokens.
func (s *Store) SaveUser(profile any) {
	data, err := json.Marshal(profile)
	if err != nil {
		log.Warn().Err(err).Msg("profile not serializable, not persisted")
		return
	}
	if err := s.repo.Set(userKey, string(data)); err != nil {
		log.Warn().Err(err).Msg("token store unavailable, profile not persisted")
	}
}

// LoadUser reads the cached profile into out. Returns false if absent or
// unreadable.
func (s *Store) LoadUser(out any) bool {
	data, ok, err := s.repo.Get(userKey)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		log.Warn().Err(err).Msg("persisted profile is corrupt, ignoring")
		return false
	}
	return true
}
