package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      gRPC bind address (e.g., ":50051")
//	-http string   HTTP bind address; empty disables HTTP
//	-d string      PostgreSQL DSN
//	-b string      storage backend: memory, postgres, dynamodb
//	-s string      JWT HMAC secret key
//	-t int         access token validity, minutes
//	-r int         reset token validity, minutes
//	-i string      token issuer: jwt, cognito
//	-n string      notifier: log, ses, amqp
//	-l string      log level
//
// os.Args is filtered with flagx.FilterArgs first so -c, -config and -env
// do not reach this FlagSet.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-http", "-d", "-b", "-s", "-t", "-r", "-i", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "http", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (memory, postgres, dynamodb)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	resetTokenValidityDuration := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset_token_validity_duration (in minutes)")

	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer (jwt, cognito)")
	fs.StringVar(&config.Notifier, "n", config.Notifier, "notifier (log, ses, amqp)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.ResetTokenValidityDuration = time.Duration(*resetTokenValidityDuration) * time.Minute
		}
	})
}
