package conformance

import (
	"net/netip"
	"testing"
	"time"

	"github.com/pkg/errors"

	. "github.com/onsi/gomega"

	gxnal "github.com/Gurux/gxnal-go"
)

// Tcp verifies a driver against the TcpFullStack contract: the socket state
// model, the passive open sequence, stream transfer with partial writes and
// would-block retries, and the pipe-closed error category.
func Tcp[S any, T gxnal.TcpFullStack[S]](t *testing.T, stack T, opt Options) {
	t.Helper()
	g := NewWithT(t)
	opt = opt.withDefaults()
	buf := make([]byte, 64)

	// Data operations must fail before the socket reaches the connected
	// state, and the failure must be permanent, not a would-block.
	s, err := stack.Socket()
	g.Expect(err).ToNot(HaveOccurred())
	_, err = stack.Send(&s, []byte{0x01})
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse(), "send before connect must fail permanently")
	_, err = stack.Receive(&s, buf)
	g.Expect(err).To(HaveOccurred())
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse(), "receive before connect must fail permanently")
	g.Expect(stack.Close(s)).To(Succeed())

	// Listen is only reachable through bind.
	ln, err := stack.Socket()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(stack.Listen(&ln)).ToNot(Succeed(), "listen must require a bound socket")
	g.Expect(stack.Bind(&ln, opt.Port)).To(Succeed())
	g.Expect(stack.Listen(&ln)).To(Succeed())

	// Nothing is pending yet.
	_, _, err = stack.Accept(&ln)
	g.Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeTrue(), "accept without a pending connection must would-block")

	// Active open against our own listener.
	client, err := stack.Socket()
	g.Expect(err).ToNot(HaveOccurred())
	remote := netip.AddrPortFrom(opt.Remote, opt.Port)
	g.Expect(retry(opt.Timeout, func() error {
		return stack.Connect(&client, remote)
	})).To(Succeed())

	var server S
	var peer netip.AddrPort
	g.Expect(retry(opt.Timeout, func() error {
		var aerr error
		server, peer, aerr = stack.Accept(&ln)
		return aerr
	})).To(Succeed())
	g.Expect(peer.IsValid()).To(BeTrue(), "accept must report a peer address")

	// Full round trip in both directions.
	payload := []byte("gxnal conformance payload")
	g.Expect(sendAll(stack, &client, payload, opt.Timeout)).To(Succeed())
	got, err := receiveAll(stack, &server, len(payload), opt.Timeout)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal(payload))

	g.Expect(sendAll(stack, &server, payload, opt.Timeout)).To(Succeed())
	got, err = receiveAll(stack, &client, len(payload), opt.Timeout)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got).To(Equal(payload))

	// A peer close is a permanent error of kind PipeClosed, never EOF by
	// stealth and never a would-block.
	g.Expect(stack.Close(client)).To(Succeed())
	err = retry(opt.Timeout, func() error {
		_, rerr := stack.Receive(&server, buf)
		return rerr
	})
	g.Expect(err).To(HaveOccurred())
	g.Expect(gxnal.KindOf(err)).To(Equal(gxnal.ErrorKindPipeClosed))

	g.Expect(stack.Close(server)).To(Succeed())
	g.Expect(stack.Close(ln)).To(Succeed())
}

// sendAll writes the whole payload, retrying would-blocks and resuming after
// partial writes.
func sendAll[S any, T gxnal.TcpClientStack[S]](stack T, socket *S, data []byte, timeout time.Duration) error {
	for len(data) > 0 {
		var n int
		if err := retry(timeout, func() error {
			var serr error
			n, serr = stack.Send(socket, data)
			return serr
		}); err != nil {
			return errors.Wrap(err, "send")
		}
		data = data[n:]
	}
	return nil
}

// receiveAll reads until total bytes have arrived, retrying would-blocks.
func receiveAll[S any, T gxnal.TcpClientStack[S]](stack T, socket *S, total int, timeout time.Duration) ([]byte, error) {
	got := make([]byte, 0, total)
	buf := make([]byte, total)
	for len(got) < total {
		var n int
		if err := retry(timeout, func() error {
			var rerr error
			n, rerr = stack.Receive(socket, buf)
			return rerr
		}); err != nil {
			return got, errors.Wrap(err, "receive")
		}
		got = append(got, buf[:n]...)
	}
	return got, nil
}
