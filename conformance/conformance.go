// Package conformance checks concrete driver implementations against the
// gxnal stack contracts. Driver authors run the harness from their own tests:
//
//	func TestMyDriverTcp(t *testing.T) {
//	    conformance.Tcp[mydriver.Socket](t, mydriver.New(), conformance.Options{})
//	}
//
// The harness only relies on the published contracts: it retries would-block
// results, verifies the socket state model, and checks the datagram
// truncation and reverse lookup rules. It never reaches into driver
// internals, so it is equally valid for an in-memory stack and for real
// hardware, as long as the driver can reach its own listeners at
// Options.Remote.
package conformance

import (
	"net/netip"
	"time"

	"github.com/pkg/errors"

	gxnal "github.com/Gurux/gxnal-go"
)

// Options configure a conformance run.
type Options struct {
	// Port is the local port the harness binds listeners to. Concurrent runs
	// against the same stack must use distinct ports. Defaults to 7000.
	Port uint16
	// Remote is the address at which the stack reaches its own listeners.
	// Defaults to 127.0.0.1.
	Remote netip.Addr
	// Timeout bounds every would-block retry loop. Defaults to 5 seconds.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = 7000
	}
	if !o.Remote.IsValid() {
		o.Remote = netip.AddrFrom4([4]byte{127, 0, 0, 1})
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	return o
}

// retry polls op until it stops reporting ErrWouldBlock or the budget runs
// out. The final error is returned as is, so permanent failures surface
// immediately.
func retry(timeout time.Duration, op func() error) error {
	deadline := time.Now().Add(timeout)
	for {
		err := op()
		if !errors.Is(err, gxnal.ErrWouldBlock) {
			return err
		}
		if time.Now().After(deadline) {
			return errors.Wrap(err, "retry budget exhausted")
		}
		time.Sleep(time.Millisecond)
	}
}
