// Package gxnal defines the network abstraction layer contracts for Gurux
// components on embedded and resource-constrained targets. It declares what a
// TCP/UDP capable driver must provide (a cellular modem driven by AT
// commands, a WiFi co-processor, or the host operating system's sockets)
// so that portable protocol code works unchanged on top of any of them.
//
// Features
//
//   - TCP: client contract (socket/connect/send/receive/close) and the full
//     server extension (bind/listen/accept), see TcpClientStack and
//     TcpFullStack.
//   - UDP: connected client contract and the full server extension with
//     explicit per-call peers, see UdpClientStack and UdpFullStack.
//   - DNS: host name resolution limited to A and AAAA records, forward and
//     reverse, see Dns and AddrType.
//   - Sharing: one driver used from several call sites through lightweight
//     views over a single-threaded cell, see SharableStack.
//   - Testing: a process-local implementation of all contracts, see
//     GXMemoryStack, and a conformance harness for driver authors in the
//     conformance subpackage.
//
// # Polling model
//
// The contracts are non-blocking. An operation that is not yet possible
// returns ErrWouldBlock, which is a signal to retry later, never a failure.
// Permanent errors are driver defined; drivers attach a portable category
// (see ErrorKind and NewNetError) so generic callers can at least detect a
// closed pipe or an unsupported operation with KindOf. Scheduling, timeouts
// and cancellation policy belong to the driver, not to this layer.
//
// # Socket handles
//
// Socket types are opaque and owned by the driver; the contracts are generic
// over them, so no boxing or dynamic dispatch is required. A handle is valid
// only along the state sequence created, optionally bound, then listening or
// connected, and finally closed. Close consumes the handle: using a socket
// after Close is a driver error. A handle belongs to one caller at a time and
// must never be used from two calls concurrently.
//
// Example
//
//	stack := gxnal.NewGXMemoryStack()
//	stack.AddHost("meter.local", netip.MustParseAddr("127.0.0.1"))
//
//	udp := stack.Udp()
//	socket, _ := udp.Socket()
//	addr, _ := stack.GetHostByName("meter.local", gxnal.AddrTypeIPv4)
//	if err := udp.Connect(&socket, netip.AddrPortFrom(addr, 4059)); err != nil {
//	    // handle driver error
//	}
//	if err := udp.Send(&socket, []byte{0x01, 0x02}); errors.Is(err, gxnal.ErrWouldBlock) {
//	    // not ready yet, retry later
//	}
//	defer udp.Close(socket)
//
// # Sharing a driver
//
// A driver instance has a single owner. To use one physical driver from
// several independent places, wrap it in a SharableStack and hand out views:
//
//	sharable := gxnal.NewSharableStack(stack.Udp())
//	client0 := gxnal.ShareUdp[gxnal.GXMemoryUdpSocket](sharable)
//	client1 := gxnal.ShareUdp[gxnal.GXMemoryUdpSocket](sharable)
//
// Each forwarded call locks the driver for the call's duration only. The cell
// is single-threaded and non-reentrant; it is not a substitute for a mutex.
//
// # Notes
//
// This package contains no socket state machines, buffering or protocol
// parsing of its own; all of that lives in the drivers implementing the
// contracts. GXMemoryStack is test infrastructure, not a device driver.
package gxnal
