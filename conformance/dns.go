package conformance

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/miekg/dns"
	"github.com/pkg/errors"

	. "github.com/onsi/gomega"

	gxnal "github.com/Gurux/gxnal-go"
)

// Host describes one entry the resolver under test is known to resolve.
// At least one of V4 and V6 must be set; record type selection is only
// checked for the families that are.
type Host struct {
	Name string
	V4   netip.Addr
	V6   netip.Addr
}

// Dns verifies a resolver against the Dns contract: A/AAAA record selection,
// reverse resolution into a caller buffer, the RFC 1035 length bound and the
// buffer-too-small rule.
func Dns(t *testing.T, resolver gxnal.Dns, host Host, opt Options) {
	t.Helper()
	g := NewWithT(t)
	opt = opt.withDefaults()

	resolve := func(addrType gxnal.AddrType) (netip.Addr, error) {
		var a netip.Addr
		err := retry(opt.Timeout, func() error {
			var rerr error
			a, rerr = resolver.GetHostByName(host.Name, addrType)
			return rerr
		})
		return a, err
	}

	if host.V4.IsValid() {
		a, err := resolve(gxnal.AddrTypeIPv4)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(a).To(Equal(host.V4), "an IPv4 hint must resolve the A record")
	}
	if host.V6.IsValid() {
		a, err := resolve(gxnal.AddrTypeIPv6)
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(a).To(Equal(host.V6), "an IPv6 hint must resolve the AAAA record")
	}
	a, err := resolve(gxnal.AddrTypeEither)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(a == host.V4 || a == host.V6).To(BeTrue(), "either-hint must resolve one of the host's records")

	addr := host.V4
	if !addr.IsValid() {
		addr = host.V6
	}

	// Reverse resolution into a buffer sized for any legal name.
	buf := make([]byte, gxnal.HostNameMaxLength)
	n, err := resolver.GetHostByAddress(addr, buf)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(n).To(BeNumerically("<=", gxnal.HostNameMaxLength))
	name := string(buf[:n])
	_, ok := dns.IsDomainName(name)
	g.Expect(ok).To(BeTrue(), "reverse resolution must yield a valid domain name")
	g.Expect(strings.EqualFold(dns.Fqdn(name), dns.Fqdn(host.Name))).To(BeTrue())

	// A short buffer is an error, never a silent truncation.
	if n > 1 {
		short := make([]byte, n-1)
		_, err = resolver.GetHostByAddress(addr, short)
		g.Expect(errors.Is(err, gxnal.ErrBufferTooSmall)).To(BeTrue(), "a short buffer must report ErrBufferTooSmall")
	}
}
