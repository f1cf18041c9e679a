package probe_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hookkit/probe"
)

func TestErrorFormat(t *testing.T) {
	t.Parallel()

	err := &probe.Error{
		Code:    probe.ErrCodeTypeNotFound,
		Message: "type host.Display not found",
		Target:  "host.Display",
		Cause:   errors.New("stripped"),
	}

	msg := err.Error()
	for _, want := range []string{"[TYPE_NOT_FOUND]", `target="host.Display"`, "not found: stripped"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestErrorIsByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &probe.Error{Code: probe.ErrCodeLoaderFailed, Message: "x"})

	if !errors.Is(err, &probe.Error{Code: probe.ErrCodeLoaderFailed}) {
		t.Error("expected match on code")
	}
	if errors.Is(err, &probe.Error{Code: probe.ErrCodeTypeNotFound}) {
		t.Error("unexpected match on other code")
	}
	if !probe.IsLoaderFailed(err) || probe.IsTypeNotFound(err) {
		t.Error("predicates disagree with code")
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	if probe.CodeOf(nil) != probe.ErrCodeUnknown {
		t.Error("nil error should be unknown")
	}
	if probe.CodeOf(errors.New("plain")) != probe.ErrCodeUnknown {
		t.Error("plain error should be unknown")
	}

	outer := &probe.Error{
		Code:  probe.ErrCodeLoaderFailed,
		Cause: &probe.Error{Code: probe.ErrCodePanic},
	}
	if probe.CodeOf(outer) != probe.ErrCodeLoaderFailed {
		t.Error("expected outermost code")
	}
	if !probe.IsPanic(outer) {
		t.Error("expected nested panic to be detected")
	}
}

func TestStackOf(t *testing.T) {
	t.Parallel()

	inner := (&probe.Error{Code: probe.ErrCodePanic}).WithStack([]byte("goroutine 1"))
	outer := &probe.Error{Code: probe.ErrCodeLoaderFailed, Cause: inner}

	if got := probe.StackOf(outer); got != "goroutine 1" {
		t.Errorf("expected nested stack, got %q", got)
	}
	if probe.StackOf(errors.New("plain")) != "" {
		t.Error("plain error has no stack")
	}
}

func TestErrorCodeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code probe.ErrorCode
		want string
	}{
		{probe.ErrCodeMemberNotFound, "MEMBER_NOT_FOUND"},
		{probe.ErrCodeLocatorUnreachable, "LOCATOR_UNREACHABLE"},
		{probe.ErrCodeRecorderUnavailable, "RECORDER_UNAVAILABLE"},
		{probe.ErrorCode(999), "UNKNOWN(999)"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	perr := &probe.PanicError{Value: sentinel}
	if !errors.Is(perr, sentinel) || perr.Error() != "boom" {
		t.Errorf("error panic values should unwrap, got %v", perr)
	}

	if (&probe.PanicError{Value: 42}).Error() != "42" {
		t.Error("non-error panic values should format")
	}
}
