// Package errors is the single error import for the module. Inspection comes
// from the standard library and stack annotation from pkg/errors.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// Standard library inspection and construction.
var (
	New  = stderrors.New
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join
)

// Stack-carrying annotation. Wrap and Wrapf return nil for a nil err.
var (
	Wrap      = pkgerrors.Wrap
	Wrapf     = pkgerrors.Wrapf
	WithStack = pkgerrors.WithStack
	Errorf    = pkgerrors.Errorf
)
