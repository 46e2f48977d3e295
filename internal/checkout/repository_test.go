package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepositoryGetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, status, token`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "status", "token", "shipping", "order_id", "last_error", "created_at", "updated_at"}))

	repo := NewPostgresRepository(mock)
	_, err = repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestPostgresRepositoryGetDecodesShipping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	orderID := "ord_1"
	shipping := []byte(`{"name":"Ada Lovelace","email":"ada@example.com","phone":"555","address":"1 Way","city":"London","state":"LN","zipCode":"10001"}`)
	mock.ExpectQuery(`SELECT id, user_id, status, token`).
		WithArgs("att-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "status", "token", "shipping", "order_id", "last_error", "created_at", "updated_at"}).
			AddRow("att-1", "u1", StatusConfirmed, "tok", shipping, &orderID, (*string)(nil), now, now))

	repo := NewPostgresRepository(mock)
	a, err := repo.Get(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Shipping == nil || a.Shipping.Name != "Ada Lovelace" {
		t.Fatalf("shipping not decoded: %+v", a.Shipping)
	}
	if a.OrderID != "ord_1" {
		t.Fatalf("orderId = %q", a.OrderID)
	}
	if a.LastError != "" {
		t.Fatalf("lastError = %q, want empty", a.LastError)
	}
}

func TestMarkSubmittingLosesRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE checkout_attempts SET status`).
		WithArgs("att-1", StatusSubmitting, StatusAwaitingPayment).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.MarkSubmitting(context.Background(), "att-1")
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight when no row transitions, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordFailureTerminalVsRetryable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE checkout_attempts SET status`).
		WithArgs("att-1", StatusAwaitingPayment, "Card declined").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE checkout_attempts SET status`).
		WithArgs("att-1", StatusFailed, "invalid request token").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepository(mock)
	if err := repo.RecordFailure(context.Background(), "att-1", "Card declined", false); err != nil {
		t.Fatalf("retryable failure: %v", err)
	}
	if err := repo.RecordFailure(context.Background(), "att-1", "invalid request token", true); err != nil {
		t.Fatalf("terminal failure: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
