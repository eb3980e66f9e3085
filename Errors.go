package gxnal

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"errors"
)

// ErrWouldBlock signals that an operation is not yet possible and should be
// retried later. It is not a failure: callers poll until the operation
// completes or returns a permanent error. Check for it with errors.Is.
var ErrWouldBlock = errors.New("operation would block")

// ErrBufferTooSmall signals that a caller supplied buffer cannot hold the
// result. The result is never silently truncated.
var ErrBufferTooSmall = errors.New("buffer is too small")

// NetError is implemented by permanent driver errors that carry a portable
// category. Callers that do not know the concrete driver's error type can
// still classify the failure through Kind.
type NetError interface {
	error
	// Kind returns the portable category of the error.
	Kind() ErrorKind
}

type netError struct {
	kind ErrorKind
	err  error
}

// NewNetError attaches a portable error kind to a driver error.
// The returned error unwraps to err, so errors.Is and errors.As keep working
// against the driver's own sentinels.
func NewNetError(kind ErrorKind, err error) error {
	return &netError{kind: kind, err: err}
}

// Error implements error.
func (g *netError) Error() string {
	return g.err.Error()
}

// Kind implements NetError.
func (g *netError) Kind() ErrorKind {
	return g.kind
}

// Unwrap returns the wrapped driver error.
func (g *netError) Unwrap() error {
	return g.err
}

// KindOf returns the portable category of err by unwrapping it until a
// NetError is found. Errors without a category report ErrorKindOther.
func KindOf(err error) ErrorKind {
	var ne NetError
	if errors.As(err, &ne) {
		return ne.Kind()
	}
	return ErrorKindOther
}
