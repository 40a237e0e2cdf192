package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
)

// lockAccount reads one account row under FOR UPDATE inside tx
func lockAccount(ctx context.Context, tx *sql.Tx, accountID int64) (*Account, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", accountID, err)
	}
	return acc, nil
}

// Transfer moves amount from sender to recipient as one atomic unit: both
// row locks, the funds check, two ledger appends and both balance updates
// either all commit or none do. Rows are locked in ascending id order so
// two opposite transfers cannot deadlock.
func (s *Store) Transfer(ctx context.Context, senderID, recipientID, amount int64, memo string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if senderID == recipientID {
		return nil, ErrSelfTransfer
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is best-effort

	first, second := senderID, recipientID
	if recipientID < senderID {
		first, second = recipientID, senderID
	}

	locked := make(map[int64]*Account, 2)
	for _, id := range []int64{first, second} {
		acc, err := lockAccount(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	sender, recipient := locked[senderID], locked[recipientID]

	if sender.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	// Debit before credit; both rows are already locked so the order is
	// invisible to other transactions.
	if _, err := record(ctx, tx, sender.ID, -amount, memo); err != nil {
		return nil, err
	}
	if _, err := record(ctx, tx, recipient.ID, amount, memo); err != nil {
		return nil, err
	}

	for _, upd := range []struct {
		id    int64
		delta int64
	}{{sender.ID, -amount}, {recipient.ID, amount}} {
		if _, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET balance = balance + $1, last_activity = now()
			WHERE id = $2`, upd.delta, upd.id); err != nil {
			return nil, fmt.Errorf("failed to update balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"sender":    sender.MelonID,
		"recipient": recipient.MelonID,
		"amount":    amount,
	}).Info("Transfer completed")

	// Best-effort notifications after commit. A lost notification never
	// rolls back the financial effect.
	if sender.Linked() {
		s.emitter.EmitNotification(sender.SessionID.String, events.TypeTransferSent,
			fmt.Sprintf("Transfer to %s: %s", recipient.MelonID, memo))
	}
	if recipient.Linked() {
		s.emitter.EmitNotification(recipient.SessionID.String, events.TypeTransferReceived,
			fmt.Sprintf("Transfer from %s: %s", sender.MelonID, memo))
	}

	return &TransferResult{
		SenderBalance:    sender.Balance - amount,
		RecipientBalance: recipient.Balance + amount,
	}, nil
}
