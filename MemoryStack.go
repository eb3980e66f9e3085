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
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Gurux/gxcommon-go"
	"github.com/akutz/memconn"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// memoryStackID distinguishes the in-memory networks of independent stacks,
// so that sockets of one stack never reach listeners of another.
var memoryStackID atomic.Uint64

// memoryLoopback is the nominal host address of every memory stack.
var memoryLoopback = netip.AddrFrom4([4]byte{127, 0, 0, 1})

const memoryQueueDepth = 64

// GXMemoryStack is a network stack that lives entirely inside the process.
// TCP streams are carried over in-memory pipes and UDP datagrams over
// per-port queues; name resolution is served from a host table filled with
// AddHost. It exists so that portable network code, and the conformance
// harness in particular, can be exercised without any real network driver.
//
// The TCP and UDP capabilities are exposed through the Tcp and Udp facets,
// since both contracts use the same method names with different socket types.
// The stack itself implements Dns.
//
// Addresses are nominal: every socket lives on 127.0.0.1, and the peer
// address reported by Accept is synthesized. Only the port is significant for
// routing.
type GXMemoryStack struct {
	mu sync.Mutex
	id uint64

	udpPorts  map[uint16]*memoryUdpQueue
	hosts     map[string][]netip.Addr
	names     map[netip.Addr]string
	ephemeral uint16

	logger *zap.Logger

	// Printer for localized messages.
	p *message.Printer
}

// NewGXMemoryStack creates an empty in-memory stack.
func NewGXMemoryStack() *GXMemoryStack {
	g := &GXMemoryStack{
		id:        memoryStackID.Add(1),
		udpPorts:  make(map[uint16]*memoryUdpQueue),
		hosts:     make(map[string][]netip.Addr),
		names:     make(map[netip.Addr]string),
		ephemeral: 49152,
		logger:    zap.NewNop(),
	}
	g.Localize(language.AmericanEnglish)
	return g
}

// Localize messages for the specified language.
// No errors is returned if language is not supported.
func (g *GXMemoryStack) Localize(language language.Tag) {
	g.p = message.NewPrinter(language)
}

// SetLogger routes debug logging of socket operations to the given logger.
// A nil logger disables logging.
func (g *GXMemoryStack) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	g.logger = logger
}

// Tcp returns the TCP capability of the stack.
func (g *GXMemoryStack) Tcp() *GXMemoryTcp {
	return &GXMemoryTcp{g: g}
}

// Udp returns the UDP capability of the stack.
func (g *GXMemoryStack) Udp() *GXMemoryUdp {
	return &GXMemoryUdp{g: g}
}

func (g *GXMemoryStack) tcpName(port uint16) string {
	return fmt.Sprintf("gxnal.%d.tcp.%d", g.id, port)
}

func (g *GXMemoryStack) nextEphemeral() uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.ephemeral
	g.ephemeral++
	return p
}

func (g *GXMemoryStack) stateError(key string, args ...any) error {
	return NewNetError(ErrorKindOther, errors.New(g.p.Sprintf(key, args...)))
}

var (
	_ TcpFullStack[GXMemoryTcpSocket] = (*GXMemoryTcp)(nil)
	_ UdpFullStack[GXMemoryUdpSocket] = (*GXMemoryUdp)(nil)
	_ Dns                             = (*GXMemoryStack)(nil)
)

type tcpState int

const (
	tcpCreated tcpState = iota
	tcpBound
	tcpListening
	tcpConnected
	tcpClosed
)

type memoryTcpState struct {
	state    tcpState
	port     uint16
	remote   netip.AddrPort
	conn     net.Conn
	ln       net.Listener
	pending  chan net.Conn
	incoming chan []byte
	rbuf     []byte
	stop     chan struct{}
}

// GXMemoryTcpSocket is an in-memory TCP socket handle. The zero value is not
// a usable socket; handles are allocated with Socket or returned by Accept.
type GXMemoryTcpSocket struct {
	st *memoryTcpState
}

// GXMemoryTcp exposes the in-memory stack as a TcpFullStack.
type GXMemoryTcp struct {
	g *GXMemoryStack
}

// Socket implements TcpClientStack.
func (t *GXMemoryTcp) Socket() (GXMemoryTcpSocket, error) {
	return GXMemoryTcpSocket{st: &memoryTcpState{state: tcpCreated}}, nil
}

// Connect implements TcpClientStack.
func (t *GXMemoryTcp) Connect(socket *GXMemoryTcpSocket, remote netip.AddrPort) error {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != tcpCreated && st.state != tcpBound {
		return g.stateError("msg.bad_state")
	}
	c, err := memconn.Dial("memu", g.tcpName(remote.Port()))
	if err != nil {
		return NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.connection_refused", remote.String())))
	}
	st.conn = c
	st.remote = remote
	st.incoming = make(chan []byte, memoryQueueDepth)
	st.stop = make(chan struct{})
	st.state = tcpConnected
	go g.tcpReader(st)
	g.logger.Debug("tcp connect", zap.Uint64("stack", g.id), zap.String("remote", remote.String()))
	return nil
}

// Send implements TcpClientStack.
func (t *GXMemoryTcp) Send(socket *GXMemoryTcpSocket, data []byte) (int, error) {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return 0, g.stateError("msg.socket_closed")
	}
	if st.state != tcpConnected {
		return 0, g.stateError("msg.not_connected")
	}
	n, err := st.conn.Write(data)
	if err != nil {
		return n, NewNetError(ErrorKindPipeClosed, gxcommon.ErrConnectionClosed)
	}
	return n, nil
}

// Receive implements TcpClientStack.
func (t *GXMemoryTcp) Receive(socket *GXMemoryTcpSocket, data []byte) (int, error) {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return 0, g.stateError("msg.socket_closed")
	}
	if st.state != tcpConnected {
		return 0, g.stateError("msg.not_connected")
	}
	if len(st.rbuf) == 0 {
		select {
		case chunk, ok := <-st.incoming:
			if !ok {
				return 0, NewNetError(ErrorKindPipeClosed, gxcommon.ErrConnectionClosed)
			}
			st.rbuf = chunk
		default:
			return 0, ErrWouldBlock
		}
	}
	n := copy(data, st.rbuf)
	st.rbuf = st.rbuf[n:]
	return n, nil
}

// Close implements TcpClientStack. Closing unblocks the peer, whose next
// Receive reports ErrorKindPipeClosed once buffered data is drained.
func (t *GXMemoryTcp) Close(socket GXMemoryTcpSocket) error {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return nil
	}
	if st.stop != nil {
		close(st.stop)
	}
	if st.conn != nil {
		_ = st.conn.Close()
	}
	if st.ln != nil {
		_ = st.ln.Close()
	}
	st.state = tcpClosed
	g.logger.Debug("tcp close", zap.Uint64("stack", g.id), zap.Uint16("port", st.port))
	return nil
}

// Bind implements TcpFullStack.
func (t *GXMemoryTcp) Bind(socket *GXMemoryTcpSocket, localPort uint16) error {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != tcpCreated {
		return g.stateError("msg.bad_state")
	}
	st.port = localPort
	st.state = tcpBound
	return nil
}

// Listen implements TcpFullStack.
func (t *GXMemoryTcp) Listen(socket *GXMemoryTcpSocket) error {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != tcpBound {
		return g.stateError("msg.not_bound")
	}
	ln, err := memconn.Listen("memu", g.tcpName(st.port))
	if err != nil {
		return NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.address_in_use", st.port)))
	}
	st.ln = ln
	st.pending = make(chan net.Conn, memoryQueueDepth)
	st.stop = make(chan struct{})
	st.state = tcpListening
	go g.tcpAcceptor(st)
	g.logger.Debug("tcp listen", zap.Uint64("stack", g.id), zap.Uint16("port", st.port))
	return nil
}

// Accept implements TcpFullStack. The reported peer address is synthesized:
// the in-memory transport does not carry the dialer's address.
func (t *GXMemoryTcp) Accept(socket *GXMemoryTcpSocket) (GXMemoryTcpSocket, netip.AddrPort, error) {
	g := t.g
	st := socket.st
	if st == nil || st.state == tcpClosed {
		return GXMemoryTcpSocket{}, netip.AddrPort{}, g.stateError("msg.socket_closed")
	}
	if st.state != tcpListening {
		return GXMemoryTcpSocket{}, netip.AddrPort{}, g.stateError("msg.not_bound")
	}
	select {
	case c := <-st.pending:
		peer := netip.AddrPortFrom(memoryLoopback, g.nextEphemeral())
		ns := &memoryTcpState{
			state:    tcpConnected,
			port:     st.port,
			remote:   peer,
			conn:     c,
			incoming: make(chan []byte, memoryQueueDepth),
			stop:     make(chan struct{}),
		}
		go g.tcpReader(ns)
		g.logger.Debug("tcp accept", zap.Uint64("stack", g.id), zap.Uint16("port", st.port))
		return GXMemoryTcpSocket{st: ns}, peer, nil
	default:
		return GXMemoryTcpSocket{}, netip.AddrPort{}, ErrWouldBlock
	}
}

func (g *GXMemoryStack) tcpAcceptor(st *memoryTcpState) {
	for {
		c, err := st.ln.Accept()
		if err != nil {
			return
		}
		select {
		case st.pending <- c:
		case <-st.stop:
			_ = c.Close()
			return
		}
	}
}

func (g *GXMemoryStack) tcpReader(st *memoryTcpState) {
	//Ethernet maximum frame size is 1518 bytes.
	buf := make([]byte, 1518)
	for {
		n, err := st.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case st.incoming <- chunk:
			case <-st.stop:
				return
			}
		}
		if err != nil {
			close(st.incoming)
			return
		}
	}
}

type udpState int

const (
	udpCreated udpState = iota
	udpBound
	udpConnected
	udpClosed
)

type memoryDatagram struct {
	data []byte
	from netip.AddrPort
}

type memoryUdpQueue struct {
	ch chan memoryDatagram
}

type memoryUdpState struct {
	state  udpState
	local  netip.AddrPort
	remote netip.AddrPort
	queue  *memoryUdpQueue
}

// GXMemoryUdpSocket is an in-memory UDP socket handle. The zero value is not
// a usable socket; handles are allocated with Socket.
type GXMemoryUdpSocket struct {
	st *memoryUdpState
}

// GXMemoryUdp exposes the in-memory stack as a UdpFullStack.
type GXMemoryUdp struct {
	g *GXMemoryStack
}

// Socket implements UdpClientStack.
func (u *GXMemoryUdp) Socket() (GXMemoryUdpSocket, error) {
	return GXMemoryUdpSocket{st: &memoryUdpState{state: udpCreated}}, nil
}

// Connect implements UdpClientStack. A local port is selected from the
// ephemeral range and registered, so replies addressed to it are delivered.
func (u *GXMemoryUdp) Connect(socket *GXMemoryUdpSocket, remote netip.AddrPort) error {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state == udpCreated {
		port, q, err := g.udpRegisterEphemeral()
		if err != nil {
			return err
		}
		st.local = netip.AddrPortFrom(memoryLoopback, port)
		st.queue = q
	}
	st.remote = remote
	st.state = udpConnected
	g.logger.Debug("udp connect", zap.Uint64("stack", g.id), zap.String("remote", remote.String()))
	return nil
}

// Send implements UdpClientStack.
func (u *GXMemoryUdp) Send(socket *GXMemoryUdpSocket, data []byte) error {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != udpConnected {
		return g.stateError("msg.not_connected")
	}
	return g.udpDeliver(st.local, st.remote, data)
}

// SendTo implements UdpFullStack.
func (u *GXMemoryUdp) SendTo(socket *GXMemoryUdpSocket, remote netip.AddrPort, data []byte) error {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != udpBound && st.state != udpConnected {
		return g.stateError("msg.not_bound")
	}
	return g.udpDeliver(st.local, remote, data)
}

// Receive implements UdpClientStack. On a connected socket datagrams from
// other peers are discarded.
func (u *GXMemoryUdp) Receive(socket *GXMemoryUdpSocket, data []byte) (int, int, netip.AddrPort, error) {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return 0, 0, netip.AddrPort{}, g.stateError("msg.socket_closed")
	}
	if st.state != udpBound && st.state != udpConnected {
		return 0, 0, netip.AddrPort{}, g.stateError("msg.not_connected")
	}
	for {
		select {
		case d := <-st.queue.ch:
			if st.state == udpConnected && d.from != st.remote {
				continue
			}
			n := copy(data, d.data)
			return n, len(d.data), d.from, nil
		default:
			return 0, 0, netip.AddrPort{}, ErrWouldBlock
		}
	}
}

// Close implements UdpClientStack.
func (u *GXMemoryUdp) Close(socket GXMemoryUdpSocket) error {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return nil
	}
	if st.queue != nil {
		g.mu.Lock()
		delete(g.udpPorts, st.local.Port())
		g.mu.Unlock()
	}
	st.state = udpClosed
	g.logger.Debug("udp close", zap.Uint64("stack", g.id), zap.Uint16("port", st.local.Port()))
	return nil
}

// Bind implements UdpFullStack.
func (u *GXMemoryUdp) Bind(socket *GXMemoryUdpSocket, localPort uint16) error {
	g := u.g
	st := socket.st
	if st == nil || st.state == udpClosed {
		return g.stateError("msg.socket_closed")
	}
	if st.state != udpCreated {
		return g.stateError("msg.bad_state")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.udpPorts[localPort]; ok {
		return NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.address_in_use", localPort)))
	}
	q := &memoryUdpQueue{ch: make(chan memoryDatagram, memoryQueueDepth)}
	g.udpPorts[localPort] = q
	st.queue = q
	st.local = netip.AddrPortFrom(memoryLoopback, localPort)
	st.state = udpBound
	g.logger.Debug("udp bind", zap.Uint64("stack", g.id), zap.Uint16("port", localPort))
	return nil
}

func (g *GXMemoryStack) udpRegisterEphemeral() (uint16, *memoryUdpQueue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for range 1024 {
		port := g.ephemeral
		g.ephemeral++
		if _, ok := g.udpPorts[port]; ok {
			continue
		}
		q := &memoryUdpQueue{ch: make(chan memoryDatagram, memoryQueueDepth)}
		g.udpPorts[port] = q
		return port, q, nil
	}
	return 0, nil, NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.no_ports")))
}

// udpDeliver routes one datagram to the queue bound at the destination port.
// Datagrams to unbound ports are dropped, as on a real network. A full
// destination queue reports ErrWouldBlock to the sender.
func (g *GXMemoryStack) udpDeliver(from, to netip.AddrPort, data []byte) error {
	g.mu.Lock()
	q := g.udpPorts[to.Port()]
	g.mu.Unlock()
	if q == nil {
		return nil
	}
	d := memoryDatagram{data: append([]byte(nil), data...), from: from}
	select {
	case q.ch <- d:
		return nil
	default:
		return ErrWouldBlock
	}
}

// AddHost registers a host name with its addresses in the stack's host
// table. Every address also resolves back to the name. Names are matched
// case-insensitively.
func (g *GXMemoryStack) AddHost(name string, addresses ...netip.Addr) {
	key := strings.ToLower(name)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hosts[key] = append(g.hosts[key], addresses...)
	for _, a := range addresses {
		g.names[a] = key
	}
	g.logger.Debug("dns add host", zap.Uint64("stack", g.id), zap.String("host", key), zap.Int("addresses", len(addresses)))
}

// GetHostByName implements Dns.
func (g *GXMemoryStack) GetHostByName(hostName string, addrType AddrType) (netip.Addr, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.hosts[strings.ToLower(hostName)] {
		switch addrType {
		case AddrTypeIPv4:
			if a.Is4() {
				return a, nil
			}
		case AddrTypeIPv6:
			if !a.Is4() {
				return a, nil
			}
		case AddrTypeEither:
			return a, nil
		}
	}
	return netip.Addr{}, NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.unknown_host", hostName)))
}

// GetHostByAddress implements Dns.
func (g *GXMemoryStack) GetHostByAddress(address netip.Addr, result []byte) (int, error) {
	g.mu.Lock()
	name, ok := g.names[address]
	g.mu.Unlock()
	if !ok {
		return 0, NewNetError(ErrorKindOther, errors.New(g.p.Sprintf("msg.unknown_host", address.String())))
	}
	if len(result) < len(name) {
		return 0, fmt.Errorf("%w: %d bytes required", ErrBufferTooSmall, len(name))
	}
	return copy(result, name), nil
}

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.socket_closed", "Socket is closed")
	message.SetString(language.AmericanEnglish, "msg.not_connected", "Socket is not connected")
	message.SetString(language.AmericanEnglish, "msg.not_bound", "Socket is not bound")
	message.SetString(language.AmericanEnglish, "msg.bad_state", "Socket state does not allow the operation")
	message.SetString(language.AmericanEnglish, "msg.address_in_use", "Port %d is already in use")
	message.SetString(language.AmericanEnglish, "msg.connection_refused", "Connection to %s refused")
	message.SetString(language.AmericanEnglish, "msg.unknown_host", "Unknown host %s")
	message.SetString(language.AmericanEnglish, "msg.no_ports", "No ephemeral ports left")

	// --- German (de) ---
	message.SetString(language.German, "msg.socket_closed", "Socket ist geschlossen")
	message.SetString(language.German, "msg.not_connected", "Socket ist nicht verbunden")
	message.SetString(language.German, "msg.not_bound", "Socket ist nicht gebunden")
	message.SetString(language.German, "msg.bad_state", "Socketzustand erlaubt die Operation nicht")
	message.SetString(language.German, "msg.address_in_use", "Port %d wird bereits verwendet")
	message.SetString(language.German, "msg.connection_refused", "Verbindung zu %s abgelehnt")
	message.SetString(language.German, "msg.unknown_host", "Unbekannter Host %s")
	message.SetString(language.German, "msg.no_ports", "Keine flüchtigen Ports mehr frei")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.socket_closed", "Soketti on suljettu")
	message.SetString(language.Finnish, "msg.not_connected", "Sokettia ei ole yhdistetty")
	message.SetString(language.Finnish, "msg.not_bound", "Sokettia ei ole sidottu")
	message.SetString(language.Finnish, "msg.bad_state", "Soketin tila ei salli toimintoa")
	message.SetString(language.Finnish, "msg.address_in_use", "Portti %d on jo käytössä")
	message.SetString(language.Finnish, "msg.connection_refused", "Yhteys kohteeseen %s hylättiin")
	message.SetString(language.Finnish, "msg.unknown_host", "Tuntematon isäntä %s")
	message.SetString(language.Finnish, "msg.no_ports", "Vapaita portteja ei ole jäljellä")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.socket_closed", "Socketen är stängd")
	message.SetString(language.Swedish, "msg.not_connected", "Socketen är inte ansluten")
	message.SetString(language.Swedish, "msg.not_bound", "Socketen är inte bunden")
	message.SetString(language.Swedish, "msg.bad_state", "Socketens tillstånd tillåter inte operationen")
	message.SetString(language.Swedish, "msg.address_in_use", "Port %d används redan")
	message.SetString(language.Swedish, "msg.connection_refused", "Anslutning till %s nekades")
	message.SetString(language.Swedish, "msg.unknown_host", "Okänd värd %s")
	message.SetString(language.Swedish, "msg.no_ports", "Inga lediga portar kvar")

	// --- Spanish (es) ---
	message.SetString(language.Spanish, "msg.socket_closed", "El socket está cerrado")
	message.SetString(language.Spanish, "msg.not_connected", "El socket no está conectado")
	message.SetString(language.Spanish, "msg.not_bound", "El socket no está vinculado")
	message.SetString(language.Spanish, "msg.bad_state", "El estado del socket no permite la operación")
	message.SetString(language.Spanish, "msg.address_in_use", "El puerto %d ya está en uso")
	message.SetString(language.Spanish, "msg.connection_refused", "Conexión a %s rechazada")
	message.SetString(language.Spanish, "msg.unknown_host", "Host desconocido %s")
	message.SetString(language.Spanish, "msg.no_ports", "No quedan puertos efímeros libres")

	// --- Estonian (et) ---
	message.SetString(language.Estonian, "msg.socket_closed", "Pesa on suletud")
	message.SetString(language.Estonian, "msg.not_connected", "Pesa ei ole ühendatud")
	message.SetString(language.Estonian, "msg.not_bound", "Pesa ei ole seotud")
	message.SetString(language.Estonian, "msg.bad_state", "Pesa olek ei luba seda toimingut")
	message.SetString(language.Estonian, "msg.address_in_use", "Port %d on juba kasutusel")
	message.SetString(language.Estonian, "msg.connection_refused", "Ühendus sihtkohta %s lükati tagasi")
	message.SetString(language.Estonian, "msg.unknown_host", "Tundmatu host %s")
	message.SetString(language.Estonian, "msg.no_ports", "Vabu porte ei ole enam")
}
