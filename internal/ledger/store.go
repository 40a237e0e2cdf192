package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
)

const accountColumns = `id, melon_id, session_id, balance, credential_hash, last_activity, created_at`

// Store owns all account and ledger state. Every multi-step mutation runs
// inside a single SQL transaction with row locks, so concurrent command
// handlers never observe a partially applied balance change.
type Store struct {
	db      *sql.DB
	logger  logging.Logger
	emitter events.Emitter
}

// NewStore creates a ledger store backed by Postgres
func NewStore(db *sql.DB, logger logging.Logger, emitter events.Emitter) *Store {
	return &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}
}

func scanAccount(row *sql.Row) (*Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.MelonID, &acc.SessionID, &acc.Balance,
		&acc.CredentialHash, &acc.LastActivity, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FindByMelonID resolves an account by its persistent community identity
func (s *Store) FindByMelonID(ctx context.Context, melonID string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE melon_id = $1`, melonID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account by melon id: %w", err)
	}
	return acc, nil
}

// FindBySessionID resolves an account by its currently linked session identity
func (s *Store) FindBySessionID(ctx context.Context, sessionID string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE session_id = $1`, sessionID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account by session id: %w", err)
	}
	return acc, nil
}

// Create provisions a new account with a zero balance and the hashed
// default secret. The caller is assumed to be authorized already.
func (s *Store) Create(ctx context.Context, melonID, defaultSecret string) (*Account, error) {
	hash, err := HashSecret(defaultSecret)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (melon_id, credential_hash, balance)
		VALUES ($1, $2, 0)
		RETURNING `+accountColumns, melonID, hash)
	acc, err := scanAccount(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.WithField("melon_id", melonID).Info("Account provisioned")
	return acc, nil
}

// RenameMelonID reassigns the account's persistent community identity.
// Administrative action; the new identity must not be in use.
func (s *Store) RenameMelonID(ctx context.Context, accountID int64, newMelonID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET melon_id = $1, last_activity = now()
		WHERE id = $2`, newMelonID, accountID)
	if isUniqueViolation(err) {
		return ErrDuplicateIdentity
	}
	if err != nil {
		return fmt.Errorf("failed to rename identity: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename identity: %w", err)
	}
	if rows == 0 {
		return ErrUnknownIdentity
	}
	return nil
}

// UnlinkSession clears the account's session link, guarded on the session
// the caller resolved. If the account was concurrently logged out and a
// newer session linked in, the guard matches nothing and the newer link
// survives. Unlinking an account that no longer holds sessionID is a
// no-op, not an error.
func (s *Store) UnlinkSession(ctx context.Context, accountID int64, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET session_id = NULL, last_activity = now()
		WHERE id = $1 AND session_id = $2`, accountID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to unlink session: %w", err)
	}
	return nil
}

// HistoryFor returns the account's ledger entries oldest first. Re-querying
// yields the same result unless new entries were appended.
func (s *Store) HistoryFor(ctx context.Context, accountID int64) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, amount, memo, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		var txn Transaction
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Amount, &txn.Memo, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		history = append(history, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return history, nil
}

// record appends one ledger entry inside the caller's transaction
func record(ctx context.Context, tx *sql.Tx, accountID, amount int64, memo string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (account_id, amount, memo)
		VALUES ($1, $2, $3)
		RETURNING id`, accountID, amount, memo).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
