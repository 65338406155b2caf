package audio

import (
	"errors"
	"testing"
)

func TestErrInvalidDstSize(t *testing.T) {
	t.Parallel()

	if ErrInvalidDstSize == nil {
		t.Fatal("ErrInvalidDstSize is nil")
	}

	expectedMsg := "dst size must hold at least one frame"
	if ErrInvalidDstSize.Error() != expectedMsg {
		t.Errorf("ErrInvalidDstSize.Error() = %q, want %q", ErrInvalidDstSize.Error(), expectedMsg)
	}
}

func TestErrUnknownFormat(t *testing.T) {
	t.Parallel()

	expectedMsg := "unknown audio format"
	if ErrUnknownFormat.Error() != expectedMsg {
		t.Errorf("ErrUnknownFormat.Error() = %q, want %q", ErrUnknownFormat.Error(), expectedMsg)
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	wrappedErr := errors.Join(ErrInvalidDstSize, errors.New("additional context"))
	if !errors.Is(wrappedErr, ErrInvalidDstSize) {
		t.Error("errors.Is() failed for wrapped ErrInvalidDstSize")
	}

	if errors.Is(ErrUnknownFormat, ErrInvalidDstSize) {
		t.Error("errors.Is() should return false for different errors")
	}
}
