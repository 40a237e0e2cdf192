package ledger

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes an account secret using bcrypt
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(bytes), nil
}

// CheckSecret compares a presented secret with a stored hash. An account
// with no stored hash fails closed.
func CheckSecret(secret string, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// SetCredential irreversibly replaces the account's credential hash and
// bumps last_activity. The clear secret is never persisted or logged.
func (s *Store) SetCredential(ctx context.Context, accountID int64, secret string) error {
	hash, err := HashSecret(secret)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET credential_hash = $1, last_activity = now()
		WHERE id = $2`, hash, accountID)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	if rows == 0 {
		return ErrUnknownIdentity
	}
	return nil
}

// Verify checks a presented secret against the account's stored hash.
// Accounts without a stored credential always fail verification.
func (s *Store) Verify(account *Account, secret string) bool {
	if account == nil || !account.CredentialHash.Valid {
		return false
	}
	return CheckSecret(secret, account.CredentialHash.String)
}
