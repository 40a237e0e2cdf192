package handlers

import "github.com/credoworks/bursar/internal/ledger"

// ErrorResponse is the error payload the dispatcher renders to users
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest binds a session identity to a persistent community identity
type LoginRequest struct {
	MelonID   string `json:"melon_id" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
	Secret    string `json:"secret" binding:"required"`
}

// LoginResponse reports the linked identity
type LoginResponse struct {
	MelonID       string `json:"melon_id"`
	AlreadyLinked bool   `json:"already_linked"`
}

// LogoutRequest unlinks whatever account holds the session
type LogoutRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// LogoutResponse reports the unlinked identity
type LogoutResponse struct {
	MelonID string `json:"melon_id"`
}

// BalanceResponse reports an account's identity and balance
type BalanceResponse struct {
	MelonID string `json:"melon_id"`
	Balance int64  `json:"balance"`
}

// HistoryResponse lists an account's ledger entries oldest first
type HistoryResponse struct {
	MelonID      string               `json:"melon_id"`
	Transactions []ledger.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// TransferRequest moves credits from the caller's account to a recipient
type TransferRequest struct {
	SessionID        string `json:"session_id" binding:"required"`
	RecipientMelonID string `json:"recipient_melon_id" binding:"required"`
	Amount           int64  `json:"amount" binding:"required"`
	Memo             string `json:"memo"`
}

// TransferResponse reports both balances after the committed transfer
type TransferResponse struct {
	SenderMelonID    string `json:"sender_melon_id"`
	RecipientMelonID string `json:"recipient_melon_id"`
	Amount           int64  `json:"amount"`
	SenderBalance    int64  `json:"sender_balance"`
	RecipientBalance int64  `json:"recipient_balance"`
}

// CreateAccountRequest provisions a new account. The dispatcher performs
// the admin role check before calling.
type CreateAccountRequest struct {
	MelonID string `json:"melon_id" binding:"required"`
}

// CreateAccountResponse reports the provisioned account
type CreateAccountResponse struct {
	MelonID string `json:"melon_id"`
	Balance int64  `json:"balance"`
}

// SetCredentialRequest replaces an account's secret
type SetCredentialRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// RenameIdentityRequest reassigns an account's melon id
type RenameIdentityRequest struct {
	NewMelonID string `json:"new_melon_id" binding:"required"`
}
