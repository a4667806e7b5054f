package domain_test

import (
	"testing"

	"go.trai.ch/soup/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("src/main.c")
	b := domain.NewInternedString("src/" + "main.c")

	if a != b {
		t.Errorf("expected interned values of equal strings to compare equal")
	}
	if a.String() != "src/main.c" {
		t.Errorf("expected String() to return %q, got %q", "src/main.c", a.String())
	}
}

func TestInternedString_Zero(t *testing.T) {
	var zero domain.InternedString
	if !zero.IsZero() {
		t.Error("expected zero value to report IsZero")
	}
	if zero.String() != "" {
		t.Errorf("expected empty string, got %q", zero.String())
	}
	if domain.NewInternedString("").IsZero() {
		t.Error("an interned empty string is not the zero value")
	}
}
