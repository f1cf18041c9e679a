package probe

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeTypeNotFound
	ErrCodeMemberNotFound
	ErrCodeInvalidHandle
	ErrCodeReceiverMismatch
	ErrCodeArgumentMismatch
	ErrCodeInvocationFailed
	ErrCodePanic
	ErrCodeLocatorUnreachable
	ErrCodeLoaderFailed
	ErrCodeRecorderUnavailable
	ErrCodeSettingReadFailed
	ErrCodeVersionLookupFailed
	ErrCodeDuplicateDefinition
	ErrCodeInvalidDefinition
	ErrCodeResultMismatch
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:             "UNKNOWN",
	ErrCodeTypeNotFound:        "TYPE_NOT_FOUND",
	ErrCodeMemberNotFound:      "MEMBER_NOT_FOUND",
	ErrCodeInvalidHandle:       "INVALID_HANDLE",
	ErrCodeReceiverMismatch:    "RECEIVER_MISMATCH",
	ErrCodeArgumentMismatch:    "ARGUMENT_MISMATCH",
	ErrCodeInvocationFailed:    "INVOCATION_FAILED",
	ErrCodePanic:               "PANIC",
	ErrCodeLocatorUnreachable:  "LOCATOR_UNREACHABLE",
	ErrCodeLoaderFailed:        "LOADER_FAILED",
	ErrCodeRecorderUnavailable: "RECORDER_UNAVAILABLE",
	ErrCodeSettingReadFailed:   "SETTING_READ_FAILED",
	ErrCodeVersionLookupFailed: "VERSION_LOOKUP_FAILED",
	ErrCodeDuplicateDefinition: "DUPLICATE_DEFINITION",
	ErrCodeInvalidDefinition:   "INVALID_DEFINITION",
	ErrCodeResultMismatch:      "RESULT_MISMATCH",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the cause attached to an Absent outcome and to failure records.
type Error struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
	Stack   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Target != "" {
		b.WriteString(fmt.Sprintf(" target=%q:", e.Target))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithTarget(target string) *Error {
	e.Target = target
	return e
}

func (e *Error) WithStack(stack []byte) *Error {
	e.Stack = string(stack)
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// StackOf returns the goroutine stack captured with a recovered panic, if any.
func StackOf(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}
		if e.Stack != "" {
			return e.Stack
		}
		err = e.Cause
	}
	return ""
}

func errTypeNotFound(name string, cause error) *Error {
	return newError(
		ErrCodeTypeNotFound,
		fmt.Sprintf("type %s not found", name),
		cause,
	).WithTarget(name)
}

func errMemberNotFound(typeName, member, signature string) *Error {
	return newError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("no member %s%s", member, signature),
		nil,
	).WithTarget(typeName)
}

func errInvalidHandle(what string) *Error {
	return newError(ErrCodeInvalidHandle, "nil "+what+" handle", nil)
}

func errReceiverMismatch(target string, message string) *Error {
	return newError(ErrCodeReceiverMismatch, message, nil).WithTarget(target)
}

func errArgumentMismatch(target string, message string) *Error {
	return newError(ErrCodeArgumentMismatch, message, nil).WithTarget(target)
}

func errInvocationFailed(target string, cause error) *Error {
	return newError(
		ErrCodeInvocationFailed,
		"callee returned error",
		cause,
	).WithTarget(target)
}

func errLocatorUnreachable(locator string, cause error) *Error {
	return newError(
		ErrCodeLocatorUnreachable,
		"external code unit not reachable",
		cause,
	).WithTarget(locator)
}

func errLoaderFailed(locator string, cause error) *Error {
	return newError(
		ErrCodeLoaderFailed,
		"failed to construct loader",
		cause,
	).WithTarget(locator)
}

func errRecorderUnavailable(cause error) *Error {
	return newError(ErrCodeRecorderUnavailable, "recorder unavailable", cause)
}

func errSettingReadFailed(name string, cause error) *Error {
	return newError(ErrCodeSettingReadFailed, "failed to read setting", cause).WithTarget(name)
}

func errVersionLookupFailed(id string, cause error) *Error {
	return newError(ErrCodeVersionLookupFailed, "failed to look up version", cause).WithTarget(id)
}

func errDuplicateDefinition(name string) *Error {
	return newError(
		ErrCodeDuplicateDefinition,
		fmt.Sprintf("type %s already defined", name),
		nil,
	).WithTarget(name)
}

func errInvalidDefinition(name string, message string) *Error {
	return newError(ErrCodeInvalidDefinition, message, nil).WithTarget(name)
}

func errResultMismatch(message string) *Error {
	return newError(ErrCodeResultMismatch, message, nil)
}

func IsTypeNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTypeNotFound
}

func IsMemberNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeMemberNotFound
}

func IsInvalidHandle(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeInvalidHandle
}

func IsInvocationFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeInvocationFailed
}

// IsPanic reports whether a recovered panic is anywhere in err's chain.
func IsPanic(err error) bool {
	return errors.Is(err, &Error{Code: ErrCodePanic})
}

func IsLocatorUnreachable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeLocatorUnreachable
}

func IsLoaderFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeLoaderFailed
}
