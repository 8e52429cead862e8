package session

import "strings"

// State is the position of the auth state machine.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// User is the authenticated user's profile record.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DisplayName returns the best human-readable name available.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.FirstName != "" || u.LastName != "":
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	default:
		return u.Email
	}
}

// Session is an immutable snapshot of the authenticated state. A session
// holding only a refresh token (access expired) is valid but must be renewed
// before use.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// IsAuthenticated is derived: an access token is present.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}
