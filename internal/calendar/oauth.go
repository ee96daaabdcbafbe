package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/Akseler/landing/pkg/logging"
)

// ErrNotConfigured is returned when Google client credentials are missing.
var ErrNotConfigured = errors.New("calendar: google oauth client not configured")

// IntegrationStatus describes whether the calendar integration can be used.
type IntegrationStatus string

const (
	StatusUnconfigured IntegrationStatus = "unconfigured"
	StatusUnauthorized IntegrationStatus = "unauthorized"
	StatusReady        IntegrationStatus = "ready"
)

// GoogleAuthConfig holds OAuth client settings.
type GoogleAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides google.Endpoint; tests point it at an httptest server.
	Endpoint *oauth2.Endpoint
	// HTTPClient is used for token exchange and refresh when set.
	HTTPClient *http.Client
}

// GoogleAuth manages the operator's Google credential.
type GoogleAuth struct {
	conf       *oauth2.Config
	configured bool
	store      CredentialStore
	httpClient *http.Client
	logger     *logging.Logger
}

func NewGoogleAuth(cfg GoogleAuthConfig, store CredentialStore, logger *logging.Logger) *GoogleAuth {
	if store == nil {
		panic("calendar: credential store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	clientID := strings.TrimSpace(cfg.ClientID)
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	return &GoogleAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{gcal.CalendarReadonlyScope},
		},
		configured: clientID != "" && clientSecret != "",
		store:      store,
		httpClient: cfg.HTTPClient,
		logger:     logger,
	}
}

// Configured reports whether client id and secret are present.
func (a *GoogleAuth) Configured() bool {
	return a.configured
}

// Status resolves the tri-state integration status. A credential that
// cannot be loaded counts as unauthorized.
func (a *GoogleAuth) Status(ctx context.Context) IntegrationStatus {
	if !a.configured {
		return StatusUnconfigured
	}
	if _, err := a.store.Load(ctx); err != nil {
		if !errors.Is(err, ErrNoCredentials) {
			a.logger.Warn("failed to load calendar credentials", "error", err)
		}
		return StatusUnauthorized
	}
	return StatusReady
}

// AuthCodeURL builds the consent URL. Offline access and forced consent make
// Google return a refresh token on every grant.
func (a *GoogleAuth) AuthCodeURL(state string) (string, error) {
	if !a.configured {
		return "", ErrNotConfigured
	}
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for tokens and persists them. A
// previously stored refresh token is kept when Google omits a new one.
func (a *GoogleAuth) Exchange(ctx context.Context, code string) error {
	if !a.configured {
		return ErrNotConfigured
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("calendar: authorization code required")
	}

	tok, err := a.conf.Exchange(a.clientContext(ctx), code)
	if err != nil {
		return fmt.Errorf("calendar: exchange code: %w", err)
	}

	stored := StoredTokensFromToken(tok)
	if stored.RefreshToken == "" {
		if prev, err := a.store.Load(ctx); err == nil && prev.RefreshToken != "" {
			stored.RefreshToken = prev.RefreshToken
		}
	}
	if err := a.store.Save(ctx, stored); err != nil {
		return err
	}
	a.logger.Info("google calendar authorized", "has_refresh_token", stored.RefreshToken != "")
	return nil
}

// RefreshIfExpired returns a usable token, refreshing once when the stored
// one has expired. The refreshed credential is persisted.
func (a *GoogleAuth) RefreshIfExpired(ctx context.Context) (*oauth2.Token, error) {
	if !a.configured {
		return nil, ErrNotConfigured
	}
	stored, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	current := stored.Token()
	if current.Valid() {
		return current, nil
	}
	if current.RefreshToken == "" {
		return nil, errors.New("calendar: access token expired and no refresh token stored")
	}

	refreshed, err := a.conf.TokenSource(a.clientContext(ctx), current).Token()
	if err != nil {
		return nil, fmt.Errorf("calendar: refresh token: %w", err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = current.RefreshToken
	}
	if err := a.store.Save(ctx, StoredTokensFromToken(refreshed)); err != nil {
		return nil, err
	}
	a.logger.Info("google calendar token refreshed", "expiry", refreshed.Expiry)
	return refreshed, nil
}

func (a *GoogleAuth) clientContext(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}
