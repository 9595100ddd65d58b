package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrConflict, "executing", "apply action", "destination occupied", nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want conflict marker", err)
	}
	for _, want := range []string{"executing", "apply action", "destination occupied"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("message %q missing %q", err.Error(), want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrExecution, "executing", "move file", "", cause)
	if !errors.Is(err, ErrExecution) {
		t.Fatalf("marker lost: %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "", "", "something", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want transient marker", err)
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrValidation, "match", "", "", nil), true},
		{Wrap(ErrConflict, "match", "", "", nil), true},
		{Wrap(ErrNotFound, "metadata", "", "", nil), true},
		{Wrap(ErrExecution, "executing", "", "", nil), false},
		{Wrap(ErrTransient, "", "", "", nil), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := Recoverable(tc.err); got != tc.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
