package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Akseler/landing/pkg/logging"
)

type tokenServer struct {
	*httptest.Server
	calls     atomic.Int32
	grantType atomic.Value
}

// newTokenServer fakes Google's token endpoint. body is returned for every
// request with the given status.
func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		_ = r.ParseForm()
		ts.grantType.Store(r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestAuth(ts *tokenServer, store CredentialStore) *GoogleAuth {
	cfg := GoogleAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:5000/api/calendar/oauth/callback",
	}
	if ts != nil {
		cfg.Endpoint = &oauth2.Endpoint{
			AuthURL:   ts.URL + "/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
		cfg.HTTPClient = ts.Client()
	}
	return NewGoogleAuth(cfg, store, logging.Discard())
}

func TestGoogleAuthStatus(t *testing.T) {
	ctx := context.Background()

	unconfigured := NewGoogleAuth(GoogleAuthConfig{ClientID: "id"}, NewMemoryCredentialStore(nil), logging.Discard())
	assert.Equal(t, StatusUnconfigured, unconfigured.Status(ctx))
	assert.False(t, unconfigured.Configured())

	store := NewMemoryCredentialStore(nil)
	auth := newTestAuth(nil, store)
	assert.Equal(t, StatusUnauthorized, auth.Status(ctx))

	require.NoError(t, store.Save(ctx, &StoredTokens{AccessToken: "at"}))
	assert.Equal(t, StatusReady, auth.Status(ctx))
}

func TestGoogleAuthCodeURL(t *testing.T) {
	auth := newTestAuth(nil, NewMemoryCredentialStore(nil))
	raw, err := auth.AuthCodeURL("state-123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "calendar.readonly")
	assert.Equal(t, "http://localhost:5000/api/calendar/oauth/callback", q.Get("redirect_uri"))

	_, err = NewGoogleAuth(GoogleAuthConfig{}, NewMemoryCredentialStore(nil), nil).AuthCodeURL("s")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGoogleAuthExchangeKeepsPreviousRefreshToken(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"new-at","token_type":"Bearer","expires_in":3600}`)
	store := NewMemoryCredentialStore(&StoredTokens{AccessToken: "old-at", RefreshToken: "old-rt"})
	auth := newTestAuth(ts, store)

	require.NoError(t, auth.Exchange(context.Background(), "code-1"))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-at", got.AccessToken)
	assert.Equal(t, "old-rt", got.RefreshToken)
	assert.Greater(t, got.ExpiryDate, time.Now().UnixMilli())
	assert.Equal(t, "authorization_code", ts.grantType.Load())
}

func TestGoogleAuthExchangeFailure(t *testing.T) {
	ts := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	store := NewMemoryCredentialStore(nil)
	auth := newTestAuth(ts, store)

	require.Error(t, auth.Exchange(context.Background(), "bad"))
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)

	assert.Error(t, auth.Exchange(context.Background(), "  "))
}

func TestRefreshIfExpiredUsesValidToken(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"unused","token_type":"Bearer","expires_in":3600}`)
	expiry := time.Now().Add(time.Hour).UnixMilli()
	auth := newTestAuth(ts, NewMemoryCredentialStore(&StoredTokens{AccessToken: "at", RefreshToken: "rt", ExpiryDate: expiry}))

	tok, err := auth.RefreshIfExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, int32(0), ts.calls.Load())
}

func TestRefreshIfExpiredRefreshesOnce(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
	expired := time.Now().Add(-time.Hour).UnixMilli()
	store := NewMemoryCredentialStore(&StoredTokens{AccessToken: "stale", RefreshToken: "rt", ExpiryDate: expired})
	auth := newTestAuth(ts, store)

	tok, err := auth.RefreshIfExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, int32(1), ts.calls.Load())
	assert.Equal(t, "refresh_token", ts.grantType.Load())

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "rt", saved.RefreshToken)
}

func TestRefreshIfExpiredFailure(t *testing.T) {
	ts := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	expired := time.Now().Add(-time.Hour).UnixMilli()
	store := NewMemoryCredentialStore(&StoredTokens{AccessToken: "stale", RefreshToken: "rt", ExpiryDate: expired})
	auth := newTestAuth(ts, store)

	_, err := auth.RefreshIfExpired(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), ts.calls.Load())

	noRefresh := newTestAuth(ts, NewMemoryCredentialStore(&StoredTokens{AccessToken: "stale", ExpiryDate: expired}))
	_, err = noRefresh.RefreshIfExpired(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), ts.calls.Load())
}
