// Package service implements the account, catalog and loan business rules on
// top of the repositories. Failures carry a Kind so the HTTP boundary can map
// them to status codes without inspecting messages.
package service

import (
	"errors"
)

type Kind int

const (
	// KindInternal is any failure that is not a business-rule outcome.
	KindInternal Kind = iota
	// KindValidation covers missing/invalid input and unique-constraint hits.
	KindValidation
	// KindAuth covers bad credentials.
	KindAuth
	// KindNotFound covers lookups that matched no record.
	KindNotFound
	// KindConflict covers business-rule violations: unavailable book,
	// renewal cap, orphaned reference.
	KindConflict
)

// Error is a classified, user-presentable failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationErr(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func authErr(msg string) error       { return &Error{Kind: KindAuth, Message: msg} }
func notFoundErr(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func conflictErr(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }

// KindOf classifies err; unclassified errors report KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
