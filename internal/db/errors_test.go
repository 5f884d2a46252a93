package db

import (
	"errors"
	"testing"
)

func TestError_WrapsUnderlying(t *testing.T) {
	err := &Error{Op: OpSearch, Err: ErrIndexNotFound}

	if err.Error() != "_search: db: index not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrIndexNotFound) {
		t.Error("expected errors.Is to see the wrapped sentinel")
	}
}
