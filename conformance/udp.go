package conformance

import (
	"net/netip"
	"testing"

	"github.com/pkg/errors"

	. "github.com/onsi/gomega"

	gxnal "github.com/Gurux/gxnal-go"
)

// Udp verifies a driver against the UdpFullStack contract: the state model,
// routing of connected sockets versus explicit per-call peers, and the
// truncation rule that a receive never reports more bytes in the caller
// buffer than the buffer holds while still exposing the true datagram size.
func Udp[S any, T gxnal.UdpFullStack[S]](t *testing.T, stack T, opt Options) {
	t.Helper()
	g := NewWithT(t)
	opt = opt.withDefaults()
	serverAddr := netip.AddrPortFrom(opt.Remote, opt.Port)

	// Data operations must fail before the socket is bound or connected, and
	// the failure must be permanent, not a would-block.
	server, err := stack.Socket()
	g.Expect(err).ToNot(HaveOccurred())
	err = stack.Send(&server, []byte{0x01})
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse(), "send before connect must fail permanently")
	err = stack.SendTo(&server, serverAddr, []byte{0x01})
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse(), "send_to before bind must fail permanently")

	g.Expect(stack.Bind(&server, opt.Port)).To(Succeed())

	// Nothing has arrived yet.
	buf := make([]byte, 64)
	_, _, _, err = stack.Receive(&server, buf)
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeTrue(), "receive without a pending datagram must would-block")

	// Connecting fixes the peer: Send carries no per-call address and must
	// still route to the server.
	client, err := stack.Socket()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(retry(opt.Timeout, func() error {
		return stack.Connect(&client, serverAddr)
	})).To(Succeed())

	payload := []byte("0123456789abcdef0123456789abcdef")
	g.Expect(retry(opt.Timeout, func() error {
		return stack.Send(&client, payload)
	})).To(Succeed())

	var n, size int
	var from netip.AddrPort
	g.Expect(retry(opt.Timeout, func() error {
		var rerr error
		n, size, from, rerr = stack.Receive(&server, buf)
		return rerr
	})).To(Succeed())
	g.Expect(n).To(Equal(len(payload)))
	g.Expect(size).To(Equal(len(payload)))
	g.Expect(buf[:n]).To(Equal(payload))
	g.Expect(from.IsValid()).To(BeTrue(), "receive must report the sender")

	// Truncation is detectable: no more bytes than the buffer holds, and the
	// true datagram size is still reported.
	g.Expect(retry(opt.Timeout, func() error {
		return stack.Send(&client, payload)
	})).To(Succeed())
	small := make([]byte, 8)
	g.Expect(retry(opt.Timeout, func() error {
		var rerr error
		n, size, from, rerr = stack.Receive(&server, small)
		return rerr
	})).To(Succeed())
	g.Expect(n).To(Equal(len(small)))
	g.Expect(size).To(Equal(len(payload)))
	g.Expect(small[:n]).To(Equal(payload[:n]))

	// An unconnected socket names the peer on every call; the reply must
	// reach the connected client.
	reply := []byte("pong")
	g.Expect(retry(opt.Timeout, func() error {
		return stack.SendTo(&server, from, reply)
	})).To(Succeed())
	g.Expect(retry(opt.Timeout, func() error {
		var rerr error
		n, size, _, rerr = stack.Receive(&client, buf)
		return rerr
	})).To(Succeed())
	g.Expect(n).To(Equal(len(reply)))
	g.Expect(size).To(Equal(len(reply)))
	g.Expect(buf[:n]).To(Equal(reply))

	g.Expect(stack.Close(client)).To(Succeed())
	g.Expect(stack.Close(server)).To(Succeed())
}
