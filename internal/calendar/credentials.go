package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned by a CredentialStore that has nothing stored.
var ErrNoCredentials = errors.New("calendar: no stored credentials")

// StoredTokens is the persisted Google OAuth credential. ExpiryDate is in
// Unix milliseconds; zero means unknown.
type StoredTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

// Token converts the stored credential to an oauth2 token.
func (s *StoredTokens) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
	}
	if s.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(s.ExpiryDate)
	}
	return tok
}

// StoredTokensFromToken builds the persisted form of tok.
func StoredTokensFromToken(tok *oauth2.Token) *StoredTokens {
	st := &StoredTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		st.ExpiryDate = tok.Expiry.UnixMilli()
	}
	return st
}

// CredentialStore persists the single operator credential.
type CredentialStore interface {
	Load(ctx context.Context) (*StoredTokens, error)
	Save(ctx context.Context, tokens *StoredTokens) error
}

// FileCredentialStore keeps the credential as a JSON file. Writes replace
// the file atomically; concurrent writers are last-writer-wins.
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Path() string {
	return s.path
}

func (s *FileCredentialStore) Load(ctx context.Context) (*StoredTokens, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("calendar: read credentials: %w", err)
	}
	var tokens StoredTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("calendar: decode credentials: %w", err)
	}
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		return nil, ErrNoCredentials
	}
	return &tokens, nil
}

func (s *FileCredentialStore) Save(ctx context.Context, tokens *StoredTokens) error {
	if tokens == nil {
		return errors.New("calendar: nil credentials")
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("calendar: encode credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("calendar: create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".google-tokens-*.json")
	if err != nil {
		return fmt.Errorf("calendar: create temp credentials: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("calendar: write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("calendar: close credentials: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("calendar: replace credentials: %w", err)
	}
	return nil
}

// MemoryCredentialStore holds the credential in process memory.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens *StoredTokens
}

func NewMemoryCredentialStore(initial *StoredTokens) *MemoryCredentialStore {
	s := &MemoryCredentialStore{}
	if initial != nil {
		cp := *initial
		s.tokens = &cp
	}
	return s
}

func (s *MemoryCredentialStore) Load(ctx context.Context) (*StoredTokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return nil, ErrNoCredentials
	}
	cp := *s.tokens
	return &cp, nil
}

func (s *MemoryCredentialStore) Save(ctx context.Context, tokens *StoredTokens) error {
	if tokens == nil {
		return errors.New("calendar: nil credentials")
	}
	cp := *tokens
	s.mu.Lock()
	s.tokens = &cp
	s.mu.Unlock()
	return nil
}
