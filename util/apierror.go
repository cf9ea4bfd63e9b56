package util

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

// ErrorKind classifies a business-rule failure so handlers can map it to the
// right HTTP representation without string matching.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindValidation
	KindInvalidTransition
	KindPackageExhausted
	KindPackageExpired
	KindOverpayment
	KindConflict
	KindPersistence
)

// ServiceError is the only error type business helpers are allowed to return.
// Storage errors are wrapped as KindPersistence at the helper boundary so a
// raw gorm error never reaches a handler.
type ServiceError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NotFoundError(msg string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Msg: msg}
}

func ValidationError(msg string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Msg: msg}
}

func InvalidTransitionError(msg string) *ServiceError {
	return &ServiceError{Kind: KindInvalidTransition, Msg: msg}
}

func PackageExhaustedError(msg string) *ServiceError {
	return &ServiceError{Kind: KindPackageExhausted, Msg: msg}
}

func PackageExpiredError(msg string) *ServiceError {
	return &ServiceError{Kind: KindPackageExpired, Msg: msg}
}

func OverpaymentError(msg string) *ServiceError {
	return &ServiceError{Kind: KindOverpayment, Msg: msg}
}

func ConflictError(msg string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Msg: msg}
}

func PersistenceError(msg string, err error) *ServiceError {
	return &ServiceError{Kind: KindPersistence, Msg: msg, Err: err}
}

// AsServiceError returns the ServiceError wrapped anywhere in err's chain,
// or a KindPersistence fallback so callers always get a classified error.
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return PersistenceError("unexpected storage error", err)
}

// RespondServiceError maps a classified error onto the API response envelope.
// NotFound -> 404, Conflict -> 409, Persistence -> 500, everything else is a
// client-side rule violation -> 400.
func RespondServiceError(c *gin.Context, err error) {
	svcErr := AsServiceError(err)
	params := APIErrorParams{Msg: svcErr.Msg, Err: svcErr}
	switch svcErr.Kind {
	case KindNotFound:
		CallErrorNotFound(c, params)
	case KindConflict:
		CallConflict(c, params)
	case KindPersistence:
		CallServerError(c, params)
	default:
		CallUserError(c, params)
	}
}
