package ledger

import (
	"context"
	"fmt"

	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
)

// Login binds a session identity to the account owning melonID.
//
// An account linked to the same session succeeds idempotently. An account
// linked to a different session fails and raises a suspicious-login event
// for administrators; a wrong secret on an unlinked account fails and
// raises a failed-login event. Neither event is visible to the caller
// beyond an ordinary failure.
func (s *Store) Login(ctx context.Context, melonID, sessionID, secret string) (*LoginResult, error) {
	account, err := s.FindByMelonID(ctx, melonID)
	if err != nil {
		return nil, err
	}

	if account.Linked() {
		if account.SessionID.String == sessionID {
			return &LoginResult{Account: account, AlreadyLinked: true}, nil
		}
		s.logger.WithFields(logging.Fields{
			"melon_id":   melonID,
			"session_id": sessionID,
		}).Warn("Login attempt on already linked account")
		s.emitter.EmitSecurity(events.TypeSuspiciousLogin, melonID,
			fmt.Sprintf("Session %s attempted to log in to %s while another session is linked", sessionID, melonID))
		return nil, ErrAlreadyLinked
	}

	if !s.Verify(account, secret) {
		s.logger.WithField("melon_id", melonID).Warn("Failed login attempt")
		s.emitter.EmitSecurity(events.TypeFailedLogin, melonID,
			fmt.Sprintf("Session %s presented a wrong secret for %s", sessionID, melonID))
		return nil, ErrInvalidCredentials
	}

	// The session_id IS NULL guard makes concurrent logins race safely:
	// exactly one UPDATE matches. The unique index on session_id rejects a
	// session already held by another account.
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET session_id = $1, last_activity = now()
		WHERE id = $2 AND session_id IS NULL`, sessionID, account.ID)
	if isUniqueViolation(err) {
		return nil, ErrSessionInUse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to link session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to link session: %w", err)
	}
	if rows == 0 {
		return nil, ErrAlreadyLinked
	}

	s.logger.WithFields(logging.Fields{
		"melon_id":   melonID,
		"session_id": sessionID,
	}).Info("Session linked")

	account.SessionID.String = sessionID
	account.SessionID.Valid = true
	return &LoginResult{Account: account}, nil
}

// Logout unlinks whatever account currently holds sessionID. A session
// that is not linked anywhere is reported as unknown, not a failure of
// the caller.
func (s *Store) Logout(ctx context.Context, sessionID string) (*Account, error) {
	account, err := s.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.UnlinkSession(ctx, account.ID, sessionID); err != nil {
		return nil, err
	}

	s.logger.WithField("melon_id", account.MelonID).Info("Session unlinked")
	return account, nil
}
