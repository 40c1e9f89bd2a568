package lifecycle

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-errors"
)

// Wire codes for the closed failure taxonomy. These are the only errorCode
// values a response may carry.
const (
	CodeAccessDenied         = "AccessDenied"
	CodeInvalidRequest       = "InvalidRequest"
	CodeNotFound             = "NotFound"
	CodeAlreadyExists        = "AlreadyExists"
	CodeResourceConflict     = "ResourceConflict"
	CodeThrottling           = "Throttling"
	CodeServiceTimeout       = "ServiceTimeout"
	CodeNetworkFailure       = "NetworkFailure"
	CodeServiceLimitExceeded = "ServiceLimitExceeded"
	CodeInternalFailure      = "InternalFailure"
)

var (
	ErrAccessDenied = errors.New("access denied", errors.CategoryAuth).
			WithTextCode(CodeAccessDenied)
	ErrInvalidRequest = errors.New("invalid request", errors.CategoryBadInput).
				WithTextCode(CodeInvalidRequest)
	ErrNotFound = errors.New("resource not found", errors.CategoryNotFound).
			WithTextCode(CodeNotFound)
	ErrAlreadyExists = errors.New("resource already exists", errors.CategoryConflict).
				WithTextCode(CodeAlreadyExists)
	ErrResourceConflict = errors.New("resource conflict", errors.CategoryConflict).
				WithTextCode(CodeResourceConflict)
	ErrThrottling = errors.New("request throttled", errors.CategoryRateLimit).
			WithTextCode(CodeThrottling)
	ErrServiceTimeout = errors.New("service timed out", errors.CategoryExternal).
				WithTextCode(CodeServiceTimeout)
	ErrNetworkFailure = errors.New("network failure", errors.CategoryExternal).
				WithTextCode(CodeNetworkFailure)
	ErrServiceLimitExceeded = errors.New("service limit exceeded", errors.CategoryRateLimit).
				WithTextCode(CodeServiceLimitExceeded)
	ErrInternalFailure = errors.New("internal failure", errors.CategoryInternal).
				WithTextCode(CodeInternalFailure)
)

var taxonomy = map[string]*errors.Error{
	CodeAccessDenied:         ErrAccessDenied,
	CodeInvalidRequest:       ErrInvalidRequest,
	CodeNotFound:             ErrNotFound,
	CodeAlreadyExists:        ErrAlreadyExists,
	CodeResourceConflict:     ErrResourceConflict,
	CodeThrottling:           ErrThrottling,
	CodeServiceTimeout:       ErrServiceTimeout,
	CodeNetworkFailure:       ErrNetworkFailure,
	CodeServiceLimitExceeded: ErrServiceLimitExceeded,
	CodeInternalFailure:      ErrInternalFailure,
}

// AccessDenied builds a taxonomy error handlers can return directly.
func AccessDenied(message string) *errors.Error { return taxonomyError(ErrAccessDenied, message) }

// InvalidRequest builds a taxonomy error handlers can return directly.
func InvalidRequest(message string) *errors.Error { return taxonomyError(ErrInvalidRequest, message) }

// NotFound builds a taxonomy error handlers can return directly.
func NotFound(message string) *errors.Error { return taxonomyError(ErrNotFound, message) }

// AlreadyExists builds a taxonomy error handlers can return directly.
func AlreadyExists(message string) *errors.Error { return taxonomyError(ErrAlreadyExists, message) }

// ResourceConflict builds a taxonomy error handlers can return directly.
func ResourceConflict(message string) *errors.Error {
	return taxonomyError(ErrResourceConflict, message)
}

// Throttling builds a taxonomy error handlers can return directly.
func Throttling(message string) *errors.Error { return taxonomyError(ErrThrottling, message) }

// ServiceTimeout builds a taxonomy error handlers can return directly.
func ServiceTimeout(message string) *errors.Error { return taxonomyError(ErrServiceTimeout, message) }

// NetworkFailure builds a taxonomy error handlers can return directly.
func NetworkFailure(message string) *errors.Error { return taxonomyError(ErrNetworkFailure, message) }

// ServiceLimitExceeded builds a taxonomy error handlers can return directly.
func ServiceLimitExceeded(message string) *errors.Error {
	return taxonomyError(ErrServiceLimitExceeded, message)
}

// InternalFailure builds a taxonomy error handlers can return directly.
func InternalFailure(message string) *errors.Error {
	return taxonomyError(ErrInternalFailure, message)
}

func taxonomyError(base *errors.Error, message string) *errors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	return err
}

// CodeOf returns the taxonomy code carried by err, or empty when err is not a
// taxonomy member.
func CodeOf(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		if _, ok := taxonomy[ge.TextCode]; ok {
			return ge.TextCode
		}
	}
	return ""
}

// IsTaxonomy reports whether err carries a recognized taxonomy code.
func IsTaxonomy(err error) bool {
	return CodeOf(err) != ""
}

// Normalize collapses any failure into a taxonomy member. Recognized members
// keep their code; everything else is coerced to InternalFailure. The original
// failure kind and message are always preserved on the message as
// "<kind>: <message>" so diagnostics survive the coercion.
func Normalize(err error) *errors.Error {
	if err == nil {
		return nil
	}

	if code := CodeOf(err); code != "" {
		var ge *errors.Error
		stderrors.As(err, &ge)
		norm := taxonomy[code].Clone()
		norm.Message = fmt.Sprintf("%s: %s", code, ge.Message)
		norm.Source = err
		return norm
	}

	norm := ErrInternalFailure.Clone()
	norm.Message = fmt.Sprintf("%s: %s", failureKind(err), err.Error())
	norm.Source = err
	return norm
}

// failureKind derives a short label for an arbitrary error's concrete type,
// the equivalent of an exception class name on the wire.
func failureKind(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) && ge.TextCode != "" {
		return ge.TextCode
	}

	t := reflect.TypeOf(err)
	if t == nil {
		return "UnknownError"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
