package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505", func(t *testing.T) {
		err := fmt.Errorf("insert prediction: %w", &pq.Error{Code: "23505", Constraint: "predictions_username_match_id_key"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23514"}) {
			t.Fatalf("expected false for check violation")
		}
	})

	t.Run("ignores non pq errors", func(t *testing.T) {
		if isUniqueViolation(fakeErr("duplicate key value violates unique constraint")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get user stats: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullHelpers(t *testing.T) {
	if nullIntPtr(sql.NullInt64{}) != nil {
		t.Fatalf("expected nil for null int")
	}
	if got := nullIntPtr(sql.NullInt64{Int64: 3, Valid: true}); got == nil || *got != 3 {
		t.Fatalf("unexpected int pointer: %v", got)
	}

	if nullTimePtr(sql.NullTime{}) != nil {
		t.Fatalf("expected nil for null time")
	}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	got := nullTimePtr(sql.NullTime{Time: at, Valid: true})
	if got == nil || got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("unexpected time pointer: %v", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
