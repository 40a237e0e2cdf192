package handlers

import (
	"errors"
	"net/http"

	"github.com/credoworks/bursar/internal/ledger"
	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
	"github.com/credoworks/bursar/pkg/middleware"
)

// respondError maps a core failure to a caller-facing response. Domain
// failures carry their own text; persistence faults are logged in full
// and surfaced as a generic failure.
func respondError(c middleware.Context, operation string, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnknownIdentity), errors.Is(err, ledger.ErrNotLinked):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrDuplicateIdentity),
		errors.Is(err, ledger.ErrAlreadyLinked),
		errors.Is(err, ledger.ErrSessionInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrSelfTransfer):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.WithError(err).WithField("operation", operation).Error("Persistence failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}

// Login links a chat session to a community account
func Login(c middleware.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "melon_id, session_id and secret are required"})
		return
	}

	result, err := store.Login(c.Request.Context(), req.MelonID, req.SessionID, req.Secret)
	if err != nil {
		countLogin("failed")
		switch {
		case errors.Is(err, ledger.ErrAlreadyLinked):
			countSecurity(events.TypeSuspiciousLogin)
		case errors.Is(err, ledger.ErrInvalidCredentials):
			countSecurity(events.TypeFailedLogin)
		}
		respondError(c, "login", err)
		return
	}

	countLogin("success")
	c.JSON(http.StatusOK, LoginResponse{
		MelonID:       result.Account.MelonID,
		AlreadyLinked: result.AlreadyLinked,
	})
}

// Logout unlinks the calling session from its account
func Logout(c middleware.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session_id is required"})
		return
	}

	account, err := store.Logout(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, "logout", err)
		return
	}

	c.JSON(http.StatusOK, LogoutResponse{MelonID: account.MelonID})
}

// GetBalance resolves the calling session to its account balance
func GetBalance(c middleware.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Session ID required"})
		return
	}

	account, err := store.FindBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, "balance", err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{MelonID: account.MelonID, Balance: account.Balance})
}

// GetHistory returns an account's full ledger, oldest first
func GetHistory(c middleware.Context) {
	melonID := c.Param("melon_id")
	if melonID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Melon ID required"})
		return
	}

	account, err := store.FindByMelonID(c.Request.Context(), melonID)
	if err != nil {
		respondError(c, "history", err)
		return
	}

	history, err := store.HistoryFor(c.Request.Context(), account.ID)
	if err != nil {
		respondError(c, "history", err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		MelonID:      account.MelonID,
		Transactions: history,
		Count:        len(history),
	})
}

// CreateTransfer moves credits from the calling session's account to the
// recipient identified by melon id
func CreateTransfer(c middleware.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session_id, recipient_melon_id and amount are required"})
		return
	}

	sender, err := store.FindBySessionID(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotLinked) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
			return
		}
		respondError(c, "transfer", err)
		return
	}

	recipient, err := store.FindByMelonID(c.Request.Context(), req.RecipientMelonID)
	if err != nil {
		respondError(c, "transfer", err)
		return
	}

	result, err := store.Transfer(c.Request.Context(), sender.ID, recipient.ID, req.Amount, req.Memo)
	if err != nil {
		countTransfer("failed")
		respondError(c, "transfer", err)
		return
	}

	countTransfer("success")
	c.JSON(http.StatusOK, TransferResponse{
		SenderMelonID:    sender.MelonID,
		RecipientMelonID: recipient.MelonID,
		Amount:           req.Amount,
		SenderBalance:    result.SenderBalance,
		RecipientBalance: result.RecipientBalance,
	})
}

// CreateAccount provisions a new account with the default secret and a
// zero balance. Role gating happened in the dispatcher already.
func CreateAccount(c middleware.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "melon_id is required"})
		return
	}

	account, err := store.Create(c.Request.Context(), req.MelonID, defaultSecret)
	if err != nil {
		countProvision("failed")
		respondError(c, "provision", err)
		return
	}

	countProvision("success")
	c.JSON(http.StatusCreated, CreateAccountResponse{
		MelonID: account.MelonID,
		Balance: account.Balance,
	})
}

// SetCredential replaces an account's secret and notifies its linked
// session, if any
func SetCredential(c middleware.Context) {
	melonID := c.Param("melon_id")
	if melonID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Melon ID required"})
		return
	}

	var req SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "secret is required"})
		return
	}

	account, err := store.FindByMelonID(c.Request.Context(), melonID)
	if err != nil {
		respondError(c, "set_credential", err)
		return
	}

	if err := store.SetCredential(c.Request.Context(), account.ID, req.Secret); err != nil {
		respondError(c, "set_credential", err)
		return
	}

	logger.WithFields(logging.Fields{
		"melon_id": melonID,
	}).Info("Credential replaced")

	if account.Linked() {
		emitter.EmitNotification(account.SessionID.String, events.TypeCredentialChanged,
			"Your secret has been changed")
	}

	c.Status(http.StatusNoContent)
}

// RenameIdentity reassigns an account's melon id. Administrative
// operation; balances and history stay with the account.
func RenameIdentity(c middleware.Context) {
	melonID := c.Param("melon_id")
	if melonID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Melon ID required"})
		return
	}

	var req RenameIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "new_melon_id is required"})
		return
	}

	account, err := store.FindByMelonID(c.Request.Context(), melonID)
	if err != nil {
		respondError(c, "rename_identity", err)
		return
	}

	if err := store.RenameMelonID(c.Request.Context(), account.ID, req.NewMelonID); err != nil {
		respondError(c, "rename_identity", err)
		return
	}

	logger.WithFields(logging.Fields{
		"melon_id":     melonID,
		"new_melon_id": req.NewMelonID,
	}).Info("Identity reassigned")

	c.Status(http.StatusNoContent)
}
