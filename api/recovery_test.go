package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myfintrack/fintrack-go/api"
)

// scriptedDoer returns canned responses in order, recording every call.
type scriptedDoer struct {
	responses []scriptedResponse
	calls     []string
}

type scriptedResponse struct {
	raw json.RawMessage
	err error
}

func (d *scriptedDoer) Do(_ context.Context, method, path string, _ any, _ map[string]string) (json.RawMessage, error) {
	d.calls = append(d.calls, method+" "+path)
	resp := d.responses[0]
	if len(d.responses) > 1 {
		d.responses = d.responses[1:]
	}
	return resp.raw, resp.err
}

type fakeRefresher struct {
	refreshErr   error
	refreshCalls int
	logoutCalls  int
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakeRefresher) Logout(context.Context) error {
	f.logoutCalls++
	return nil
}

func unauthorized(path string) scriptedResponse {
	return scriptedResponse{err: &api.Error{
		Status:  http.StatusUnauthorized,
		Body:    map[string]any{"detail": "token expired"},
		Request: &api.RequestDescriptor{Method: http.MethodGet, Path: path},
	}}
}

func TestRecoveryPassesSuccessThrough(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{{raw: json.RawMessage(`{"ok":true}`)}}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	raw, err := recovery.Do(context.Background(), http.MethodGet, "transactions/", nil, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(raw))
	require.Zero(t, refresher.refreshCalls)
}

func TestRecoveryRefreshesAndRetriesOnceOn401(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		unauthorized("transactions/"),
		{raw: json.RawMessage(`[{"id":1}]`)},
	}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	raw, err := recovery.Do(context.Background(), http.MethodGet, "transactions/", nil, nil)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1}]`, string(raw))
	require.Equal(t, 1, refresher.refreshCalls)
	require.Equal(t, []string{"GET transactions/", "GET transactions/"}, doer.calls)
}

func TestRecoveryFailedRefreshForcesLogout(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{unauthorized("transactions/")}}
	refresher := &fakeRefresher{refreshErr: api.ErrAuthenticationFailed}
	recovery := api.NewRecovery(doer, refresher)

	_, err := recovery.Do(context.Background(), http.MethodGet, "transactions/", nil, nil)
	require.ErrorIs(t, err, api.ErrAuthenticationFailed)
	require.Equal(t, 1, refresher.logoutCalls)
	require.Len(t, doer.calls, 1) // no retry without a fresh token
}

func TestRecoverySecond401IsTerminal(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		unauthorized("transactions/"),
		unauthorized("transactions/"),
	}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	_, err := recovery.Do(context.Background(), http.MethodGet, "transactions/", nil, nil)
	require.ErrorIs(t, err, api.ErrAuthenticationFailed)
	require.Equal(t, 1, refresher.refreshCalls) // never loops
	require.Len(t, doer.calls, 2)
	require.Equal(t, 1, refresher.logoutCalls)
}

func TestRecoveryDoesNotRefreshAuthEndpoints(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{unauthorized("auth/jwt/create/")}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	_, err := recovery.Do(context.Background(), http.MethodPost, "auth/jwt/create/", nil, nil)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Zero(t, refresher.refreshCalls)
}

func TestRecoveryPropagatesOtherErrorsUntouched(t *testing.T) {
	boom := &api.NetworkError{
		Request: &api.RequestDescriptor{Method: http.MethodGet, Path: "transactions/"},
		Err:     errors.New("connection refused"),
	}
	doer := &scriptedDoer{responses: []scriptedResponse{{err: boom}}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	_, err := recovery.Do(context.Background(), http.MethodGet, "transactions/", nil, nil)
	var netErr *api.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Zero(t, refresher.refreshCalls)
	require.Zero(t, refresher.logoutCalls)
}

func TestRecoveryPropagatesNon401APIErrors(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{{err: &api.Error{
		Status:  http.StatusForbidden,
		Request: &api.RequestDescriptor{Method: http.MethodDelete, Path: "transactions/7/"},
	}}}}
	refresher := &fakeRefresher{}
	recovery := api.NewRecovery(doer, refresher)

	_, err := recovery.Do(context.Background(), http.MethodDelete, "transactions/7/", nil, nil)
	require.True(t, api.IsStatus(err, http.StatusForbidden))
	require.Zero(t, refresher.refreshCalls)
}
