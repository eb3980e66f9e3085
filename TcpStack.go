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

// TcpClientStack is implemented by TCP/IP capable drivers. One implementation
// may drive a cellular modem with AT commands, another a WiFi co-processor,
// a third the host sockets of the operating system. Portable client code
// written against this contract works with any of them.
//
// The socket type S is opaque and fully owned by the driver; this layer puts
// no constraints on its representation, only on the order of operations:
// a socket must be connected before Send or Receive is called, and a closed
// socket must not be reused.
//
// A handle is owned by a single caller at a time. No two calls may be made
// on the same socket concurrently.
type TcpClientStack[S any] interface {
	// Socket opens a new socket for usage as a TCP client.
	//
	// The socket must be connected before it can be used. Socket fails with a
	// driver defined error when the driver has run out of socket resources.
	Socket() (S, error)

	// Connect connects the socket to the given remote host and port.
	//
	// If the connection cannot be completed immediately, Connect returns
	// ErrWouldBlock and the caller retries later.
	Connect(socket *S, remote netip.AddrPort) error

	// Send writes to the stream and returns the number of bytes written,
	// which may be less than len(data). ErrWouldBlock is returned when
	// nothing can be written yet.
	Send(socket *S, data []byte) (int, error)

	// Receive reads from the stream into data and returns the number of
	// bytes placed in data[:n]. ErrWouldBlock is returned when no data has
	// arrived yet; a connection closed by the peer is a permanent error of
	// kind ErrorKindPipeClosed, never a would-block.
	Receive(socket *S, data []byte) (int, error)

	// Close releases the driver resources held by the socket. The handle is
	// consumed and must not be used afterwards.
	Close(socket S) error
}

// TcpFullStack is implemented by drivers that additionally expose TCP server
// functionality: listening for connection requests and establishing multiple
// unique connections with remote clients.
type TcpFullStack[S any] interface {
	TcpClientStack[S]

	// Bind binds an unused socket to the specified local port.
	Bind(socket *S, localPort uint16) error

	// Listen transitions a previously bound socket to the listening state.
	Listen(socket *S) error

	// Accept takes an active connection request on a listening socket and
	// returns a new connected socket together with the peer address.
	// ErrWouldBlock is returned while no connection request is pending.
	Accept(socket *S) (S, netip.AddrPort, error)
}
