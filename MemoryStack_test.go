package gxnal_test

import (
	"errors"
	"net/netip"

	"golang.org/x/text/language"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gxnal "github.com/Gurux/gxnal-go"
)

var _ = Describe("GXMemoryStack", func() {
	var stack *gxnal.GXMemoryStack

	BeforeEach(func() {
		stack = gxnal.NewGXMemoryStack()
	})

	Describe("TCP", func() {
		It("refuses data operations before connect", func() {
			tcp := stack.Tcp()
			s, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			_, err = tcp.Send(&s, []byte{0x01})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse())
			_, err = tcp.Receive(&s, make([]byte, 4))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse())
			Expect(tcp.Close(s)).To(Succeed())
		})

		It("refuses listen on an unbound socket", func() {
			tcp := stack.Tcp()
			s, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Listen(&s)).ToNot(Succeed())
		})

		It("refuses connecting to a port nobody listens on", func() {
			tcp := stack.Tcp()
			s, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			err = tcp.Connect(&s, netip.MustParseAddrPort("127.0.0.1:9"))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse())
		})

		It("moves a stream between two sockets", func() {
			tcp := stack.Tcp()

			ln, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Bind(&ln, 4059)).To(Succeed())
			Expect(tcp.Listen(&ln)).To(Succeed())

			_, _, err = tcp.Accept(&ln)
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeTrue())

			client, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Connect(&client, netip.MustParseAddrPort("127.0.0.1:4059"))).To(Succeed())

			var server gxnal.GXMemoryTcpSocket
			Eventually(func() error {
				var aerr error
				server, _, aerr = tcp.Accept(&ln)
				return aerr
			}).Should(Succeed())

			n, err := tcp.Send(&client, []byte("ping"))
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(4))

			buf := make([]byte, 16)
			var got []byte
			Eventually(func() error {
				rn, rerr := tcp.Receive(&server, buf)
				if rerr == nil {
					got = append(got, buf[:rn]...)
				}
				return rerr
			}).Should(Succeed())
			Expect(string(got)).To(Equal("ping"))

			Expect(tcp.Close(client)).To(Succeed())
			Expect(tcp.Close(server)).To(Succeed())
			Expect(tcp.Close(ln)).To(Succeed())
		})

		It("reports a closed pipe once the peer is gone", func() {
			tcp := stack.Tcp()

			ln, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Bind(&ln, 4060)).To(Succeed())
			Expect(tcp.Listen(&ln)).To(Succeed())

			client, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Connect(&client, netip.MustParseAddrPort("127.0.0.1:4060"))).To(Succeed())

			var server gxnal.GXMemoryTcpSocket
			Eventually(func() error {
				var aerr error
				server, _, aerr = tcp.Accept(&ln)
				return aerr
			}).Should(Succeed())

			Expect(tcp.Close(client)).To(Succeed())

			buf := make([]byte, 4)
			Eventually(func() gxnal.ErrorKind {
				_, rerr := tcp.Receive(&server, buf)
				return gxnal.KindOf(rerr)
			}).Should(Equal(gxnal.ErrorKindPipeClosed))

			Expect(tcp.Close(server)).To(Succeed())
			Expect(tcp.Close(ln)).To(Succeed())
		})

		It("rejects a second listener on the same port", func() {
			tcp := stack.Tcp()

			first, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Bind(&first, 4061)).To(Succeed())
			Expect(tcp.Listen(&first)).To(Succeed())

			second, err := tcp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(tcp.Bind(&second, 4061)).To(Succeed())
			Expect(tcp.Listen(&second)).ToNot(Succeed())

			Expect(tcp.Close(first)).To(Succeed())
		})
	})

	Describe("UDP", func() {
		It("routes connected sends without a per-call peer", func() {
			udp := stack.Udp()

			server, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&server, 4059)).To(Succeed())

			client, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Connect(&client, netip.MustParseAddrPort("127.0.0.1:4059"))).To(Succeed())
			Expect(udp.Send(&client, []byte("ping"))).To(Succeed())

			buf := make([]byte, 16)
			n, size, from, err := udp.Receive(&server, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(size).To(Equal(4))
			Expect(string(buf[:n])).To(Equal("ping"))
			Expect(from.IsValid()).To(BeTrue())

			// The reply reaches the connected client through its ephemeral port.
			Expect(udp.SendTo(&server, from, []byte("pong"))).To(Succeed())
			n, size, _, err = udp.Receive(&client, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(size).To(Equal(4))
			Expect(string(buf[:n])).To(Equal("pong"))

			Expect(udp.Close(client)).To(Succeed())
			Expect(udp.Close(server)).To(Succeed())
		})

		It("truncates into the caller buffer but reports the real size", func() {
			udp := stack.Udp()

			server, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&server, 4062)).To(Succeed())

			client, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Connect(&client, netip.MustParseAddrPort("127.0.0.1:4062"))).To(Succeed())

			payload := make([]byte, 100)
			for i := range payload {
				payload[i] = byte(i)
			}
			Expect(udp.Send(&client, payload)).To(Succeed())

			small := make([]byte, 10)
			n, size, _, err := udp.Receive(&server, small)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(10))
			Expect(size).To(Equal(100))
			Expect(small).To(Equal(payload[:10]))

			Expect(udp.Close(client)).To(Succeed())
			Expect(udp.Close(server)).To(Succeed())
		})

		It("would-blocks when no datagram is pending", func() {
			udp := stack.Udp()
			server, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&server, 4063)).To(Succeed())
			_, _, _, err = udp.Receive(&server, make([]byte, 4))
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeTrue())
			Expect(udp.Close(server)).To(Succeed())
		})

		It("refuses a double bind of the same port", func() {
			udp := stack.Udp()
			first, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&first, 4064)).To(Succeed())
			second, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&second, 4064)).ToNot(Succeed())
			Expect(udp.Close(first)).To(Succeed())
		})

		It("frees the port again on close", func() {
			udp := stack.Udp()
			first, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&first, 4065)).To(Succeed())
			Expect(udp.Close(first)).To(Succeed())
			second, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&second, 4065)).To(Succeed())
			Expect(udp.Close(second)).To(Succeed())
		})

		It("drops datagrams from strangers on a connected socket", func() {
			udp := stack.Udp()

			client, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Connect(&client, netip.MustParseAddrPort("127.0.0.1:4066"))).To(Succeed())

			// A sender bound to a different port than the connected peer.
			stranger, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&stranger, 4067)).To(Succeed())

			// Learn the client's local port by having it send once.
			sink, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			Expect(udp.Bind(&sink, 4066)).To(Succeed())
			Expect(udp.Send(&client, []byte("hello"))).To(Succeed())
			buf := make([]byte, 8)
			_, _, clientAddr, err := udp.Receive(&sink, buf)
			Expect(err).ToNot(HaveOccurred())

			Expect(udp.SendTo(&stranger, clientAddr, []byte("spoof"))).To(Succeed())
			_, _, _, err = udp.Receive(&client, buf)
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeTrue())

			Expect(udp.Close(client)).To(Succeed())
			Expect(udp.Close(stranger)).To(Succeed())
			Expect(udp.Close(sink)).To(Succeed())
		})
	})

	Describe("DNS", func() {
		v4 := netip.MustParseAddr("192.0.2.1")
		v6 := netip.MustParseAddr("2001:db8::1")

		It("selects records by address type", func() {
			stack.AddHost("meter.example.org", v4, v6)

			a, err := stack.GetHostByName("meter.example.org", gxnal.AddrTypeIPv4)
			Expect(err).ToNot(HaveOccurred())
			Expect(a).To(Equal(v4))

			a, err = stack.GetHostByName("METER.example.org", gxnal.AddrTypeIPv6)
			Expect(err).ToNot(HaveOccurred())
			Expect(a).To(Equal(v6))

			a, err = stack.GetHostByName("meter.example.org", gxnal.AddrTypeEither)
			Expect(err).ToNot(HaveOccurred())
			Expect(a).To(Equal(v4))
		})

		It("fails on unknown hosts", func() {
			_, err := stack.GetHostByName("nowhere.example.org", gxnal.AddrTypeEither)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, gxnal.ErrWouldBlock)).To(BeFalse())
		})

		It("resolves names back from addresses", func() {
			stack.AddHost("meter.example.org", v4)
			buf := make([]byte, gxnal.HostNameMaxLength)
			n, err := stack.GetHostByAddress(v4, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("meter.example.org"))
		})

		It("rejects a buffer that cannot hold the name", func() {
			stack.AddHost("meter.example.org", v4)
			short := make([]byte, 4)
			_, err := stack.GetHostByAddress(v4, short)
			Expect(errors.Is(err, gxnal.ErrBufferTooSmall)).To(BeTrue())
		})
	})

	Describe("localization", func() {
		It("speaks the configured language", func() {
			stack.Localize(language.German)
			udp := stack.Udp()
			s, err := udp.Socket()
			Expect(err).ToNot(HaveOccurred())
			err = udp.Send(&s, []byte{0x01})
			Expect(err).To(MatchError("Socket ist nicht verbunden"))
		})
	})
})
