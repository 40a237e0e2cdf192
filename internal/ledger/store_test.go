package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func testTime() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func TestCreateProvisionsZeroBalanceAccount(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("melon-new", sqlmock.AnyArg()).
		WillReturnRows(accountRowWithHash(5, "melon-new", nil, "$2a$10$hash"))

	account, err := store.Create(context.Background(), "melon-new", "1111")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if account.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", account.Balance)
	}
	if account.Linked() {
		t.Fatal("new account must not be linked")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateDuplicateIdentity(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WithArgs("melon-a", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.Create(context.Background(), "melon-a", "1111")
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRenameMelonID(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectExec("UPDATE accounts").
		WithArgs("melon-b", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.RenameMelonID(context.Background(), 5, "melon-b"); err != nil {
		t.Fatalf("RenameMelonID returned error: %v", err)
	}
}

func TestRenameMelonIDTaken(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectExec("UPDATE accounts").
		WithArgs("melon-a", int64(5)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.RenameMelonID(context.Background(), 5, "melon-a")
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestRenameMelonIDUnknownAccount(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectExec("UPDATE accounts").
		WithArgs("melon-b", int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.RenameMelonID(context.Background(), 77, "melon-b")
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestFindByMelonIDUnknown(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectQuery("SELECT id, melon_id.*WHERE melon_id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "melon_id", "session_id", "balance", "credential_hash", "last_activity", "created_at",
		}))

	_, err := store.FindByMelonID(context.Background(), "ghost")
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestHistoryForReturnsOldestFirstAndSumsToBalance(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectQuery("SELECT id, account_id, amount, memo, created_at").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "memo", "created_at"}).
			AddRow(1, 1, 100, "provision grant", testTime()).
			AddRow(2, 1, -40, "rent", testTime()).
			AddRow(3, 1, 15, "refund", testTime()))

	history, err := store.HistoryFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("HistoryFor returned error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].ID <= history[i-1].ID {
			t.Fatalf("history not in creation order: %+v", history)
		}
	}

	var sum int64
	for _, txn := range history {
		sum += txn.Amount
	}
	if sum != 75 {
		t.Fatalf("expected history to sum to 75, got %d", sum)
	}
}

func TestHistoryForEmptyAccount(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectQuery("SELECT id, account_id, amount, memo, created_at").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "memo", "created_at"}))

	history, err := store.HistoryFor(context.Background(), 9)
	if err != nil {
		t.Fatalf("HistoryFor returned error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrInsufficientFunds) {
		t.Fatal("expected ErrInsufficientFunds to be a domain error")
	}
	if IsDomainError(errors.New("connection refused")) {
		t.Fatal("expected driver error to be a persistence fault")
	}
	if IsDomainError(nil) {
		t.Fatal("nil is not a domain error")
	}
}
