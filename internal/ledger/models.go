package ledger

import (
	"database/sql"
	"time"
)

// Account is a persistent community identity holding a credit balance.
// MelonID is the externally issued community id; SessionID is the volatile
// chat-platform identity currently linked to the account, if any.
type Account struct {
	ID             int64          `json:"id"`
	MelonID        string         `json:"melon_id"`
	SessionID      sql.NullString `json:"-"`
	Balance        int64          `json:"balance"`
	CredentialHash sql.NullString `json:"-"`
	LastActivity   time.Time      `json:"last_activity"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Linked reports whether the account currently has a session identity
func (a *Account) Linked() bool {
	return a.SessionID.Valid
}

// Transaction is one append-only ledger entry. Positive amounts are
// credits, negative amounts debits. Rows are never updated or deleted:
// an account's balance always equals the sum of its transaction amounts.
type Transaction struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Amount    int64     `json:"amount"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
}

// TransferResult reports the balances after a committed transfer
type TransferResult struct {
	SenderBalance    int64 `json:"sender_balance"`
	RecipientBalance int64 `json:"recipient_balance"`
}

// LoginResult reports the outcome of a successful or idempotent login
type LoginResult struct {
	Account       *Account
	AlreadyLinked bool
}
