package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// ValueFlags lists the flags that take a value, so callers can tell them
// apart from positional arguments.
var ValueFlags = []string{"-a", "-t", "-c", "-config"}

// parseFlags populates selected Config fields from -a and -t.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
