package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myfintrack/fintrack-go/session"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{name: "valid", email: "demo@myfintrack.com", password: "Password123"},
		{name: "empty email", email: "", password: "Password123", wantErr: "invalid email: is required"},
		{name: "whitespace email", email: "   ", password: "Password123", wantErr: "invalid email: is required"},
		{name: "missing at sign", email: "demo.myfintrack.com", password: "Password123", wantErr: "invalid email: must contain @"},
		{name: "password too short", email: "demo@myfintrack.com", password: "short", wantErr: "invalid password: must be at least 8 characters"},
		{name: "password exactly eight", email: "demo@myfintrack.com", password: "12345678"},
		{name: "empty password", email: "demo@myfintrack.com", password: "", wantErr: "invalid password: must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.ValidateCredentials(tt.email, tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
			require.True(t, session.IsValidation(err))
		})
	}
}
