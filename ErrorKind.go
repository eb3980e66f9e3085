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
	"fmt"
	"strings"

	"github.com/Gurux/gxcommon-go"
)

// ErrorKind is the closed set of error categories that portable callers can
// react to without knowing the concrete driver's error type. Drivers attach a
// kind to permanent errors with NewNetError; everything that does not fit a
// more specific category is ErrorKindOther.
type ErrorKind int

const (
	// ErrorKindOther defines a driver specific error with no portable meaning.
	ErrorKindOther ErrorKind = iota
	// ErrorKindPipeClosed defines that the connection was closed by the peer.
	ErrorKindPipeClosed
	// ErrorKindUnsupported defines that the driver does not implement the
	// requested operation.
	ErrorKindUnsupported
)

// ErrorKindParse converts the given string into an ErrorKind value.
//
// It returns the corresponding ErrorKind constant if the string matches
// a known kind name, or an error if the input is invalid.
func ErrorKindParse(value string) (ErrorKind, error) {
	var ret ErrorKind
	var err error
	switch strings.ToUpper(value) {
	case "OTHER":
		ret = ErrorKindOther
	case "PIPECLOSED":
		ret = ErrorKindPipeClosed
	case "UNSUPPORTED":
		ret = ErrorKindUnsupported
	default:
		err = fmt.Errorf("%w: %q", gxcommon.ErrUnknownEnum, value)
	}
	return ret, err
}

// String returns the canonical name of the error kind.
// It satisfies fmt.Stringer.
func (g ErrorKind) String() string {
	var ret string
	switch g {
	case ErrorKindOther:
		ret = "Other"
	case ErrorKindPipeClosed:
		ret = "PipeClosed"
	case ErrorKindUnsupported:
		ret = "Unsupported"
	}
	return ret
}
