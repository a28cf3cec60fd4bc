package gwerr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeStorageUnavailable = "STORAGE_FAILURE"
)

var (
	// ErrNotFound is returned when an entity referenced by the request does not exist.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")

	// ErrStorageUnavailable is returned when the statistics storage could not serve a read.
	ErrStorageUnavailable = New(fiber.StatusServiceUnavailable, CodeStorageUnavailable, "statistics storage is currently unavailable")
)

type Extras map[string]any

type GatewayError struct {
	StatusCode int     `json:"-"`
	ErrorCode  string  `json:"code" example:"INVALID_REQUEST"`
	Message    string  `json:"message" example:"invalid request: some or all request parameters are invalid"`
	Extras     *Extras `json:"-"`
}

// Convertible is implemented by domain errors that know which GatewayError they surface as.
type Convertible interface {
	error
	GatewayError() *GatewayError
}

func New(statusCode int, errorCode string, message string) *GatewayError {
	return &GatewayError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e GatewayError) Msg(format string, parts ...any) *GatewayError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e GatewayError) WithExtras(extras Extras) *GatewayError {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *GatewayError {
	return ErrInvalidReq.WithExtras(Extras{
		"violations": violations,
	})
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// IsCode reports whether err carries a GatewayError with the given error code.
func IsCode(err error, code string) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.ErrorCode == code
}
