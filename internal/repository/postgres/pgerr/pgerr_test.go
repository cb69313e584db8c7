package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "profiles_username_key"})

	if !IsUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to match")
	}
	if !IsUniqueViolationOn(wrapped, "profiles_username_key") {
		t.Fatalf("expected constraint to match")
	}
	if IsUniqueViolationOn(wrapped, "profiles_pkey") {
		t.Fatalf("expected other constraint not to match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("23505")) {
		t.Fatalf("plain errors never match")
	}
}

func TestIsForeignKeyViolationOn(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", ConstraintName: "temple_bookings_booked_by_profiles_fkey"})

	if !IsForeignKeyViolationOn(err, "temple_bookings_booked_by_profiles_fkey") {
		t.Fatalf("expected wrapped 23503 to match")
	}
	if IsForeignKeyViolationOn(err, "profiles_pkey") {
		t.Fatalf("expected other constraint not to match")
	}
	if IsForeignKeyViolationOn(&pgconn.PgError{Code: "23505", ConstraintName: "temple_bookings_booked_by_profiles_fkey"}, "temple_bookings_booked_by_profiles_fkey") {
		t.Fatalf("unique violation is not a foreign key violation")
	}
}
