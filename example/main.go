package main

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxnal-go"
	"golang.org/x/text/language"
)

var (
	host    = flag.String("h", "meter.example.org", "Host name")
	port    = flag.Int("p", 4059, "Host port")
	message = flag.String("m", "", "Send message")
	t       = flag.String("t", "", "Trace level.")
	lang    = flag.String("lang", "", "Used language.")
)

func CurrentLanguage() language.Tag {
	langEnv := os.Getenv("LANG")
	if langEnv == "" {
		return language.AmericanEnglish
	}
	langEnv = strings.Split(langEnv, ".")[0]
	tag, err := language.Parse(langEnv)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// poll retries a would-block operation until it completes.
func poll(op func() error) error {
	for {
		err := op()
		if !errors.Is(err, gxnal.ErrWouldBlock) {
			return err
		}
	}
}

func main() {
	flag.Parse()
	if *message == "" {
		flag.PrintDefaults()
		return
	}

	stack := gxnal.NewGXMemoryStack()
	stack.AddHost(*host, netip.MustParseAddr("127.0.0.1"))
	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error parsing language:", err)
			return
		}
		stack.Localize(tag)
	}

	// One driver, shared between the resolver and both socket users.
	sharable := gxnal.NewSharableStack(stack.Udp())
	if *t != "" {
		tl, err := gxcommon.TraceLevelParse(*t)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		err = sharable.SetTrace(tl)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
	}
	sharable.SetOnTrace(func(sender any, e gxcommon.TraceEventArgs) {
		fmt.Printf("Trace: %s\n", e.String())
	})

	fmt.Printf("Host name: %s\n", *host)
	fmt.Printf("Host port: %d\n", *port)
	fmt.Printf("Message: '%s'\n", *message)
	fmt.Printf("Trace level %s\n", sharable.GetTrace().String())

	addr, err := stack.GetHostByName(*host, gxnal.AddrTypeIPv4)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Printf("Resolved %s to %s\n", *host, addr)
	remote := netip.AddrPortFrom(addr, uint16(*port))

	serverView := gxnal.ShareUdpFull[gxnal.GXMemoryUdpSocket](sharable)
	clientView := gxnal.ShareUdp[gxnal.GXMemoryUdpSocket](sharable)

	// An echo server on the shared driver.
	server, err := serverView.Socket()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	if err = serverView.Bind(&server, uint16(*port)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	defer func() {
		if err := serverView.Close(server); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()

	client, err := clientView.Socket()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	defer func() {
		if err := clientView.Close(client); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()
	if err = clientView.Connect(&client, remote); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}

	if err = poll(func() error {
		return clientView.Send(&client, []byte(*message))
	}); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}

	buf := make([]byte, 1024)
	var from netip.AddrPort
	var n int
	err = poll(func() error {
		var rerr error
		n, _, from, rerr = serverView.Receive(&server, buf)
		return rerr
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error returned:", err)
		return
	}
	fmt.Printf("Server got: %s\n", string(buf[:n]))

	// Echo it back to the sender.
	if err = poll(func() error {
		return serverView.SendTo(&server, from, buf[:n])
	}); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	err = poll(func() error {
		var rerr error
		n, _, _, rerr = clientView.Receive(&client, buf)
		return rerr
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error returned:", err)
		return
	}
	fmt.Printf("Echo reply: %s\n", string(buf[:n]))
	fmt.Printf("Exit\n")
}
