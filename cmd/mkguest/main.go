// mkguest emits flat guest binaries for the machine, ready for rvgo -bin.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"rvgo/guest"
)

func main() {
	var (
		kind    = flag.String("guest", "fib", "fib|banner.")
		n       = flag.Int("n", 10, "Fibonacci index (fib guest).")
		msg     = flag.String("msg", "hello\n", "Message to print (banner guest).")
		outPath = flag.String("out", "", "Output file (defaults to <guest>.bin).")
	)
	flag.Parse()

	var (
		bin []byte
		err error
	)
	switch strings.ToLower(*kind) {
	case "fib":
		bin, err = guest.Fib(*n)
	case "banner":
		bin, err = guest.Banner(*msg)
	default:
		fatalf("unknown guest: %s", *kind)
	}
	if err != nil {
		fatalf("%s: %v", *kind, err)
	}

	path := *outPath
	if path == "" {
		path = *kind + ".bin"
	}
	if err := os.WriteFile(path, bin, 0o644); err != nil {
		fatalf("write: %v", err)
	}
	fmt.Printf("%s: %d bytes\n", path, len(bin))
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
