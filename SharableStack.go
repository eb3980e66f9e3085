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

	"github.com/Gurux/gxcommon-go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TraceEventHandler receives trace events emitted while a sharable stack
// forwards calls to the wrapped driver.
type TraceEventHandler func(sender any, e gxcommon.TraceEventArgs)

// SharableStack wraps a driver so it can be used from several independent
// call sites without transferring ownership. A driver normally has a single
// owner; SharableStack stores it behind a single-threaded cell and hands out
// any number of lightweight views (see ShareTcp, ShareUdp, ShareDns and the
// full-stack variants). Every forwarded call locks the driver exclusively for
// exactly the call's duration.
//
// The cell is not a mutex. It is single-threaded and non-reentrant: the views
// must all be used from the same goroutine, and a driver callback that calls
// back into a view panics. Do not use SharableStack to share a driver between
// goroutines.
type SharableStack[T any] struct {
	driver     T
	busy       bool
	traceLevel gxcommon.TraceLevel
	onTrace    TraceEventHandler

	// Printer for localized messages.
	p *message.Printer
}

// NewSharableStack creates a sharable wrapper that contains and uses the
// given driver.
func NewSharableStack[T any](driver T) *SharableStack[T] {
	g := &SharableStack[T]{driver: driver}
	g.Localize(language.AmericanEnglish)
	return g
}

// Localize messages for the specified language.
// No errors is returned if language is not supported.
func (g *SharableStack[T]) Localize(language language.Tag) {
	g.p = message.NewPrinter(language)
}

// GetTrace returns the active trace level.
func (g *SharableStack[T]) GetTrace() gxcommon.TraceLevel {
	return g.traceLevel
}

// SetTrace sets the trace level for forwarded calls.
func (g *SharableStack[T]) SetTrace(traceLevel gxcommon.TraceLevel) error {
	g.traceLevel = traceLevel
	return nil
}

// SetOnTrace sets the handler that receives trace events.
func (g *SharableStack[T]) SetOnTrace(value TraceEventHandler) {
	g.onTrace = value
}

// borrow locks the cell for one forwarded call. The matching release must run
// before control returns to the caller.
func (g *SharableStack[T]) borrow(op string) T {
	if g.busy {
		panic(g.p.Sprintf("msg.share_reentrant", op))
	}
	g.busy = true
	g.trace(gxcommon.TraceTypesInfo, g.p.Sprintf("msg.share_forward", op))
	return g.driver
}

func (g *SharableStack[T]) release() {
	g.busy = false
}

func (g *SharableStack[T]) trace(traceType gxcommon.TraceTypes, message string) {
	cb := g.onTrace
	if cb != nil && !(int(g.traceLevel) < int(traceType)) {
		p := gxcommon.NewTraceEventArgs(traceType, message, "")
		cb(g, *p)
	}
}

// SharedTcpStack is a view over a sharable stack that satisfies
// TcpClientStack. It is created by ShareTcp.
type SharedTcpStack[S any, T TcpClientStack[S]] struct {
	owner *SharableStack[T]
}

// ShareTcp returns a view of the wrapped driver that can be used as a first
// class TcpClientStack implementation. The socket type S cannot be inferred
// and is given explicitly: ShareTcp[MySocket](owner).
func ShareTcp[S any, T TcpClientStack[S]](owner *SharableStack[T]) *SharedTcpStack[S, T] {
	return &SharedTcpStack[S, T]{owner: owner}
}

// Socket implements TcpClientStack.
func (g *SharedTcpStack[S, T]) Socket() (S, error) {
	d := g.owner.borrow("tcp socket")
	defer g.owner.release()
	return d.Socket()
}

// Connect implements TcpClientStack.
func (g *SharedTcpStack[S, T]) Connect(socket *S, remote netip.AddrPort) error {
	d := g.owner.borrow("tcp connect")
	defer g.owner.release()
	return d.Connect(socket, remote)
}

// Send implements TcpClientStack.
func (g *SharedTcpStack[S, T]) Send(socket *S, data []byte) (int, error) {
	d := g.owner.borrow("tcp send")
	defer g.owner.release()
	return d.Send(socket, data)
}

// Receive implements TcpClientStack.
func (g *SharedTcpStack[S, T]) Receive(socket *S, data []byte) (int, error) {
	d := g.owner.borrow("tcp receive")
	defer g.owner.release()
	return d.Receive(socket, data)
}

// Close implements TcpClientStack.
func (g *SharedTcpStack[S, T]) Close(socket S) error {
	d := g.owner.borrow("tcp close")
	defer g.owner.release()
	return d.Close(socket)
}

// SharedTcpFullStack is a view over a sharable stack that satisfies
// TcpFullStack. It is created by ShareTcpFull.
type SharedTcpFullStack[S any, T TcpFullStack[S]] struct {
	SharedTcpStack[S, T]
}

// ShareTcpFull returns a view of the wrapped driver that can be used as a
// first class TcpFullStack implementation.
func ShareTcpFull[S any, T TcpFullStack[S]](owner *SharableStack[T]) *SharedTcpFullStack[S, T] {
	return &SharedTcpFullStack[S, T]{SharedTcpStack[S, T]{owner: owner}}
}

// Bind implements TcpFullStack.
func (g *SharedTcpFullStack[S, T]) Bind(socket *S, localPort uint16) error {
	d := g.owner.borrow("tcp bind")
	defer g.owner.release()
	return d.Bind(socket, localPort)
}

// Listen implements TcpFullStack.
func (g *SharedTcpFullStack[S, T]) Listen(socket *S) error {
	d := g.owner.borrow("tcp listen")
	defer g.owner.release()
	return d.Listen(socket)
}

// Accept implements TcpFullStack.
func (g *SharedTcpFullStack[S, T]) Accept(socket *S) (S, netip.AddrPort, error) {
	d := g.owner.borrow("tcp accept")
	defer g.owner.release()
	return d.Accept(socket)
}

// SharedUdpStack is a view over a sharable stack that satisfies
// UdpClientStack. It is created by ShareUdp.
type SharedUdpStack[S any, T UdpClientStack[S]] struct {
	owner *SharableStack[T]
}

// ShareUdp returns a view of the wrapped driver that can be used as a first
// class UdpClientStack implementation.
func ShareUdp[S any, T UdpClientStack[S]](owner *SharableStack[T]) *SharedUdpStack[S, T] {
	return &SharedUdpStack[S, T]{owner: owner}
}

// Socket implements UdpClientStack.
func (g *SharedUdpStack[S, T]) Socket() (S, error) {
	d := g.owner.borrow("udp socket")
	defer g.owner.release()
	return d.Socket()
}

// Connect implements UdpClientStack.
func (g *SharedUdpStack[S, T]) Connect(socket *S, remote netip.AddrPort) error {
	d := g.owner.borrow("udp connect")
	defer g.owner.release()
	return d.Connect(socket, remote)
}

// Send implements UdpClientStack.
func (g *SharedUdpStack[S, T]) Send(socket *S, data []byte) error {
	d := g.owner.borrow("udp send")
	defer g.owner.release()
	return d.Send(socket, data)
}

// Receive implements UdpClientStack.
func (g *SharedUdpStack[S, T]) Receive(socket *S, data []byte) (int, int, netip.AddrPort, error) {
	d := g.owner.borrow("udp receive")
	defer g.owner.release()
	return d.Receive(socket, data)
}

// Close implements UdpClientStack.
func (g *SharedUdpStack[S, T]) Close(socket S) error {
	d := g.owner.borrow("udp close")
	defer g.owner.release()
	return d.Close(socket)
}

// SharedUdpFullStack is a view over a sharable stack that satisfies
// UdpFullStack. It is created by ShareUdpFull.
type SharedUdpFullStack[S any, T UdpFullStack[S]] struct {
	SharedUdpStack[S, T]
}

// ShareUdpFull returns a view of the wrapped driver that can be used as a
// first class UdpFullStack implementation.
func ShareUdpFull[S any, T UdpFullStack[S]](owner *SharableStack[T]) *SharedUdpFullStack[S, T] {
	return &SharedUdpFullStack[S, T]{SharedUdpStack[S, T]{owner: owner}}
}

// Bind implements UdpFullStack.
func (g *SharedUdpFullStack[S, T]) Bind(socket *S, localPort uint16) error {
	d := g.owner.borrow("udp bind")
	defer g.owner.release()
	return d.Bind(socket, localPort)
}

// SendTo implements UdpFullStack.
func (g *SharedUdpFullStack[S, T]) SendTo(socket *S, remote netip.AddrPort, data []byte) error {
	d := g.owner.borrow("udp send_to")
	defer g.owner.release()
	return d.SendTo(socket, remote, data)
}

// SharedDns is a view over a sharable stack that satisfies Dns.
// It is created by ShareDns.
type SharedDns[T Dns] struct {
	owner *SharableStack[T]
}

// ShareDns returns a view of the wrapped driver that can be used as a first
// class Dns implementation.
func ShareDns[T Dns](owner *SharableStack[T]) *SharedDns[T] {
	return &SharedDns[T]{owner: owner}
}

// GetHostByName implements Dns.
func (g *SharedDns[T]) GetHostByName(hostName string, addrType AddrType) (netip.Addr, error) {
	d := g.owner.borrow("dns get_host_by_name")
	defer g.owner.release()
	return d.GetHostByName(hostName, addrType)
}

// GetHostByAddress implements Dns.
func (g *SharedDns[T]) GetHostByAddress(address netip.Addr, result []byte) (int, error) {
	d := g.owner.borrow("dns get_host_by_address")
	defer g.owner.release()
	return d.GetHostByAddress(address, result)
}

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.share_reentrant", "Reentrant access to shared stack in %s")
	message.SetString(language.AmericanEnglish, "msg.share_forward", "Forwarding %s")

	// --- German (de) ---
	message.SetString(language.German, "msg.share_reentrant", "Reentranter Zugriff auf den gemeinsamen Stack in %s")
	message.SetString(language.German, "msg.share_forward", "%s wird weitergeleitet")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.share_reentrant", "Jaettua pinoa käytettiin uudelleen kesken kutsun %s")
	message.SetString(language.Finnish, "msg.share_forward", "Välitetään %s")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.share_reentrant", "Återinträdande åtkomst till delad stack i %s")
	message.SetString(language.Swedish, "msg.share_forward", "Vidarebefordrar %s")

	// --- Spanish (es) ---
	message.SetString(language.Spanish, "msg.share_reentrant", "Acceso reentrante a la pila compartida en %s")
	message.SetString(language.Spanish, "msg.share_forward", "Reenviando %s")

	// --- Estonian (et) ---
	message.SetString(language.Estonian, "msg.share_reentrant", "Korduv juurdepääs jagatud pinule kohas %s")
	message.SetString(language.Estonian, "msg.share_forward", "Edastatakse %s")
}
