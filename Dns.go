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
	"net/netip"
)

// HostNameMaxLength is the maximum length of a fully qualified domain name
// in bytes, per RFC 1035. A result buffer of this size is always large
// enough for GetHostByAddress.
const HostNameMaxLength = 255

// Dns is implemented by drivers that can resolve host names. It is not a
// general DNS client: it deals only in host address records, A (IPv4) and
// AAAA (IPv6), resolving an address from a host name or a host name from an
// address.
type Dns interface {
	// GetHostByName resolves the first address of a host, given its name and
	// the desired address record type. ErrWouldBlock is returned while the
	// resolution is still in progress.
	GetHostByName(hostName string, addrType AddrType) (netip.Addr, error)

	// GetHostByAddress resolves the name of a host, given its address.
	//
	// The name is stored at the beginning of result and its length is
	// returned. If result cannot hold the whole name, GetHostByAddress fails
	// with ErrBufferTooSmall instead of truncating.
	GetHostByAddress(address netip.Addr, result []byte) (int, error)
}
