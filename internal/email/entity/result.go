package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a dispatch failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindTemplateRender
	KindTransportConnection
	KindTransportFormat
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindTemplateRender:
		return "template_render"
	case KindTransportConnection:
		return "transport_connection"
	case KindTransportFormat:
		return "transport_format"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is a failure raised inside the dispatch pipeline.
type Error struct {
	Kind ErrorKind
	// Msg is the caller-facing text. For validation errors it is the
	// translated field message.
	Msg string
	Err error
}

// NewError wraps err with kind. msg may be empty.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain. A nil error is
// KindNone and any other error is KindUnexpected.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// DispatchResult is the outcome of one dispatch. Succeeded implies Kind is
// KindNone.
type DispatchResult struct {
	ID        int64
	Succeeded bool
	Kind      ErrorKind
	Detail    string
}

// Success builds a successful result.
func Success(id int64) DispatchResult {
	return DispatchResult{ID: id, Succeeded: true, Kind: KindNone}
}

// Failure folds err into a failed result. Validation results carry the
// caller-facing message as Detail, others the full error text.
func Failure(id int64, err error) DispatchResult {
	kind := KindOf(err)
	if kind == KindNone {
		kind = KindUnexpected
	}

	detail := ""
	var e *Error
	switch {
	case errors.As(err, &e) && kind == KindValidation && e.Msg != "":
		detail = e.Msg
	case err != nil:
		detail = err.Error()
	}

	return DispatchResult{ID: id, Succeeded: false, Kind: kind, Detail: detail}
}
