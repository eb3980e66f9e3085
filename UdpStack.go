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

// UdpClientStack is implemented by UDP/IP capable drivers. Portable datagram
// client code, a CoAP client for example, works against this contract with
// any driver that satisfies it.
//
// The socket type S is opaque and fully owned by the driver. A socket must be
// connected (or, for the server extension, bound) before data operations are
// permitted, and a closed socket must not be reused. A handle is owned by a
// single caller at a time.
type UdpClientStack[S any] interface {
	// Socket allocates a socket for further use.
	Socket() (S, error)

	// Connect connects the socket with a peer. The driver selects a local
	// port automatically and initializes the socket for reading and writing.
	// Datagrams sent with Send are routed to this peer without the caller
	// repeating the address on every call.
	Connect(socket *S, remote netip.AddrPort) error

	// Send sends data as a single datagram to the connected peer.
	// ErrWouldBlock is returned when the datagram cannot be queued yet.
	Send(socket *S, data []byte) error

	// Receive reads a datagram a remote host has sent to us. The payload is
	// placed in data[:n] with n never exceeding len(data); size is the true
	// length of the datagram, so size > n tells the caller that the payload
	// was truncated. The sender is reported in remote. ErrWouldBlock is
	// returned when no datagram has arrived yet.
	Receive(socket *S, data []byte) (n int, size int, remote netip.AddrPort, err error)

	// Close releases the driver resources held by the socket. The handle is
	// consumed and must not be used afterwards.
	Close(socket S) error
}

// UdpFullStack is implemented by drivers that additionally allow listening
// on a chosen local port and answering arbitrary remote hosts.
type UdpFullStack[S any] interface {
	UdpClientStack[S]

	// Bind binds an unused socket to the specified local port.
	Bind(socket *S, localPort uint16) error

	// SendTo sends data as a single datagram to an explicitly given remote
	// host. Unlike Send on a connected socket, the peer is required on every
	// call. ErrWouldBlock is returned when the datagram cannot be queued yet.
	SendTo(socket *S, remote netip.AddrPort, data []byte) error
}
