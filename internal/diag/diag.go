// Package diag defines how analysis failures are classified and reported.
//
// A method that cannot be analyzed fails with an *Error carrying one of four
// kinds. At the method boundary the error is converted into an
// hcl.Diagnostic, the reporting currency shared by every front-end.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Kind classifies a method-level failure.
type Kind uint8

const (
	// UnsupportedConstruct is an expression or statement shape the walker
	// does not recognize.
	UnsupportedConstruct Kind = iota + 1
	// UnsupportedOperator is an operator token with no Operator mapping.
	UnsupportedOperator
	// CyclicDefinition is a self- or mutually-referential local definition.
	CyclicDefinition
	// InternalFault is a broken invariant inside the analysis core.
	InternalFault
)

// Code is the stable identifier of the kind.
func (k Kind) Code() string {
	switch k {
	case UnsupportedConstruct:
		return "GM1001"
	case UnsupportedOperator:
		return "GM1002"
	case CyclicDefinition:
		return "GM1003"
	case InternalFault:
		return "GM1999"
	}
	return "GM0000"
}

func (k Kind) String() string {
	switch k {
	case UnsupportedConstruct:
		return "UnsupportedConstruct"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case CyclicDefinition:
		return "CyclicDefinition"
	case InternalFault:
		return "InternalFault"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) title() string {
	switch k {
	case UnsupportedConstruct:
		return "Unsupported construct"
	case UnsupportedOperator:
		return "Unsupported operator"
	case CyclicDefinition:
		return "Cyclic definition"
	}
	return "Internal fault"
}

// Error is a classified analysis failure.
type Error struct {
	Kind    Kind
	Message string
	Subject hcl.Range
	// Path names the variables of a cycle, first one repeated at the end.
	Path []string
}

func (e *Error) Error() string {
	return e.Kind.Code() + ": " + e.Message
}

// Unsupported reports an unrecognized construct at rng.
func Unsupported(rng hcl.Range, format string, args ...any) *Error {
	return &Error{Kind: UnsupportedConstruct, Message: fmt.Sprintf(format, args...), Subject: rng}
}

// Operator reports an operator token with no mapping.
func Operator(rng hcl.Range, token string) *Error {
	return &Error{
		Kind:    UnsupportedOperator,
		Message: fmt.Sprintf("operator %q is not supported", token),
		Subject: rng,
	}
}

// Cyclic reports a cyclic definition through path.
func Cyclic(rng hcl.Range, path []string) *Error {
	msg := "variable " + path[0] + " depends on itself"
	if len(path) > 2 {
		msg = "variables form a cycle: " + strings.Join(path, " -> ")
	}
	return &Error{Kind: CyclicDefinition, Message: msg, Subject: rng, Path: path}
}

// Internal reports a broken invariant.
func Internal(rng hcl.Range, format string, args ...any) *Error {
	return &Error{Kind: InternalFault, Message: fmt.Sprintf(format, args...), Subject: rng}
}

// KindOf returns the kind of err. Errors that are not an *Error are
// InternalFault.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalFault
}

// ToDiagnostic converts a method failure into an error diagnostic. fallback
// is used as the subject when err carries no source range.
func ToDiagnostic(method string, fallback hcl.Range, err error) *hcl.Diagnostic {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: InternalFault, Message: err.Error()}
	}
	subject := e.Subject
	if subject.Filename == "" {
		subject = fallback
	}
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("%s %s in %s", e.Kind.Code(), e.Kind.title(), method),
		Detail:   e.Message,
		Subject:  subject.Ptr(),
		Extra:    e,
	}
}

// FromDiagnostic recovers the *Error a diagnostic was built from.
func FromDiagnostic(d *hcl.Diagnostic) (*Error, bool) {
	e, ok := d.Extra.(*Error)
	return e, ok
}
