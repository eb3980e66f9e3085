package gxnal_test

import (
	"errors"
	"fmt"

	"github.com/Gurux/gxcommon-go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gxnal "github.com/Gurux/gxnal-go"
)

var _ = Describe("error kinds", func() {
	It("classifies a categorized error", func() {
		err := gxnal.NewNetError(gxnal.ErrorKindPipeClosed, gxcommon.ErrConnectionClosed)
		Expect(gxnal.KindOf(err)).To(Equal(gxnal.ErrorKindPipeClosed))
	})

	It("survives wrapping with fmt.Errorf", func() {
		err := gxnal.NewNetError(gxnal.ErrorKindPipeClosed, gxcommon.ErrConnectionClosed)
		wrapped := fmt.Errorf("send failed: %w", err)
		Expect(gxnal.KindOf(wrapped)).To(Equal(gxnal.ErrorKindPipeClosed))
	})

	It("unwraps to the driver sentinel", func() {
		err := gxnal.NewNetError(gxnal.ErrorKindPipeClosed, gxcommon.ErrConnectionClosed)
		Expect(errors.Is(err, gxcommon.ErrConnectionClosed)).To(BeTrue())
	})

	It("reports Other for plain errors", func() {
		Expect(gxnal.KindOf(errors.New("boom"))).To(Equal(gxnal.ErrorKindOther))
		Expect(gxnal.KindOf(nil)).To(Equal(gxnal.ErrorKindOther))
	})

	It("keeps the driver message", func() {
		err := gxnal.NewNetError(gxnal.ErrorKindOther, errors.New("boom"))
		Expect(err).To(MatchError("boom"))
	})

	DescribeTable("ErrorKindParse",
		func(value string, expected gxnal.ErrorKind) {
			v, err := gxnal.ErrorKindParse(value)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(expected))
			Expect(v.String()).ToNot(BeEmpty())
		},
		Entry("other", "Other", gxnal.ErrorKindOther),
		Entry("pipe closed", "PipeClosed", gxnal.ErrorKindPipeClosed),
		Entry("unsupported", "UNSUPPORTED", gxnal.ErrorKindUnsupported),
	)

	It("rejects an unknown kind name", func() {
		_, err := gxnal.ErrorKindParse("Fatal")
		Expect(errors.Is(err, gxcommon.ErrUnknownEnum)).To(BeTrue())
	})
})

var _ = Describe("AddrType", func() {
	DescribeTable("AddrTypeParse",
		func(value string, expected gxnal.AddrType) {
			v, err := gxnal.AddrTypeParse(value)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(expected))
		},
		Entry("IPv4", "IPv4", gxnal.AddrTypeIPv4),
		Entry("IPv6", "ipv6", gxnal.AddrTypeIPv6),
		Entry("Either", "Either", gxnal.AddrTypeEither),
	)

	It("round trips through String", func() {
		for _, t := range []gxnal.AddrType{gxnal.AddrTypeIPv4, gxnal.AddrTypeIPv6, gxnal.AddrTypeEither} {
			v, err := gxnal.AddrTypeParse(t.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(t))
		}
	})

	It("rejects an unknown record type name", func() {
		_, err := gxnal.AddrTypeParse("MX")
		Expect(errors.Is(err, gxcommon.ErrUnknownEnum)).To(BeTrue())
	})
})
