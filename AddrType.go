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

// AddrType selects which host address record a name lookup resolves.
type AddrType int

const (
	// AddrTypeIPv4 defines that the result is an A record.
	AddrTypeIPv4 AddrType = iota
	// AddrTypeIPv6 defines that the result is an AAAA record.
	AddrTypeIPv6
	// AddrTypeEither defines that the result is either an A record or an AAAA record.
	AddrTypeEither
)

// AddrTypeParse converts the given string into an AddrType value.
//
// It returns the corresponding AddrType constant if the string matches
// a known record type name, or an error if the input is invalid.
func AddrTypeParse(value string) (AddrType, error) {
	var ret AddrType
	var err error
	switch strings.ToUpper(value) {
	case "IPV4":
		ret = AddrTypeIPv4
	case "IPV6":
		ret = AddrTypeIPv6
	case "EITHER":
		ret = AddrTypeEither
	default:
		err = fmt.Errorf("%w: %q", gxcommon.ErrUnknownEnum, value)
	}
	return ret, err
}

// String returns the canonical name of the address record type.
// It satisfies fmt.Stringer.
func (g AddrType) String() string {
	var ret string
	switch g {
	case AddrTypeIPv4:
		ret = "IPv4"
	case AddrTypeIPv6:
		ret = "IPv6"
	case AddrTypeEither:
		ret = "Either"
	}
	return ret
}
