package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the category of an error
type Kind string

const (
	// KindConfig ошибка конфигурации, запуск прерывается
	KindConfig Kind = "config"
	// KindProcessing ошибка обработки
	KindProcessing Kind = "processing"
	// KindStorage ошибка чтения или записи файлов и объектов
	KindStorage Kind = "storage"
	// KindNotify ошибка отправки уведомления
	KindNotify Kind = "notify"
)

// Error represents a structured application error
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s %s", e.Kind, e.Op)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error without a cause
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error with a cause
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// Config creates a configuration error
func Config(op, message string, cause error) *Error {
	return Wrap(KindConfig, op, message, cause)
}

// Storage creates a storage error
func Storage(op, message string, cause error) *Error {
	return Wrap(KindStorage, op, message, cause)
}

// IsKind checks whether any error in the chain has the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first structured error in the chain
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}
