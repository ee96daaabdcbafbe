package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// operatorCredentialID keys the single row; the service has one operator.
const operatorCredentialID = "default"

type credentialQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCredentialStore persists the credential in calendar_credentials.
type PostgresCredentialStore struct {
	db credentialQuerier
}

func NewPostgresCredentialStore(pool *pgxpool.Pool) *PostgresCredentialStore {
	if pool == nil {
		panic("calendar: pgx pool required")
	}
	return &PostgresCredentialStore{db: pool}
}

func newPostgresCredentialStoreWithDB(db credentialQuerier) *PostgresCredentialStore {
	if db == nil {
		panic("calendar: db required")
	}
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Load(ctx context.Context) (*StoredTokens, error) {
	query := `SELECT access_token, refresh_token, expiry_date FROM calendar_credentials WHERE id = $1`
	var tokens StoredTokens
	err := s.db.QueryRow(ctx, query, operatorCredentialID).Scan(&tokens.AccessToken, &tokens.RefreshToken, &tokens.ExpiryDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("calendar: load credentials: %w", err)
	}
	return &tokens, nil
}

func (s *PostgresCredentialStore) Save(ctx context.Context, tokens *StoredTokens) error {
	if tokens == nil {
		return errors.New("calendar: nil credentials")
	}
	query := `
		INSERT INTO calendar_credentials (id, access_token, refresh_token, expiry_date, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expiry_date = EXCLUDED.expiry_date,
			updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, operatorCredentialID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiryDate); err != nil {
		return fmt.Errorf("calendar: save credentials: %w", err)
	}
	return nil
}
