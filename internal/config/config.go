// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mmichaels01/steamserverquery/internal/logger"
	"github.com/mmichaels01/steamserverquery/internal/vars"
	"github.com/mmichaels01/steamserverquery/pkg/a2s"
)

// AnyGame mark for maintenance any (all) game folder
const AnyGame = "AnyGame"

// ErrNoAuthToken is returned when the HTTP server would start without an admin token.
var ErrNoAuthToken = errors.New("required flag `-t, --auth-token' or environment variable `SSQ_AUTH_TOKEN` was not specified")

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server    Server        `group:"Server Options" env-namespace:"SSQ"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"SSQ_DB"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"SSQ_GEOIP"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"SSQ_RATE_LIMIT"`
	A2S       A2S           `group:"A2S Options" namespace:"a2s" env-namespace:"SSQ_A2S"`
	Query     Query         `group:"One-shot Query Options" namespace:"query"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"SSQ_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address      string   `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken    string   `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	AllowedGames []string `short:"g" long:"allowed-game" env:"ALLOWED_GAMES" description:"Game folders allowed to be tracked, empty allows any" env-delim:","`
	MaxBodySize  int64    `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"512"`
	TrustProxy   bool     `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
	Workers      int      `long:"workers" env:"WORKERS" description:"Background query workers" default:"10"`
	QueueSize    int      `long:"queue-size" env:"QUEUE_SIZE" description:"Pending query jobs buffer" default:"1000"`
}

// Storage holds database configuration.
type Storage struct {
	// betteralign:ignore

	Path          string `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"steamserverquery.db"`
	PruneEmpty    string `long:"prune-empty" description:"Delete servers with no A2S data. Optional arg: game folder." optional:"true" optional-value:"AnyGame"`
	CheckEmpty    string `long:"check-empty" description:"Re-check servers with no A2S data. Update if UP, delete if DOWN. Optional arg: game folder." optional:"true" optional-value:"AnyGame"`
	CheckAll      string `long:"check-all" description:"Re-check ALL servers. Update if UP, delete if DOWN. Optional arg: game folder." optional:"true" optional-value:"AnyGame"`
	GenerateCount int    `long:"gen-fake-data" hidden:"true"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `long:"path" env:"PATH" description:"Path to MMDB file" default:"steamserverquery.mmdb"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB, empty disables download" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// A2S holds Source Query protocol configuration.
type A2S struct {
	// betteralign:ignore

	Timeout      time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout of every send and receive" default:"5s"`
	BufferSize   uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response datagram buffer size" default:"4096"`
	PollInterval time.Duration `long:"poll-interval" env:"POLL_INTERVAL" description:"Refresh tracked servers every interval, 0 disables" default:"5m"`
}

// Query holds the one-shot query mode configuration.
type Query struct {
	// betteralign:ignore

	Address string `short:"q" long:"address" description:"Query host:port once, print the result and exit"`
	Players bool   `short:"p" long:"players" description:"Also query the player list"`
	JSON    bool   `long:"json" description:"Print the result as JSON"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
	SoftLimitDur   time.Duration `long:"soft" env:"SOFT" description:"Soft limit: ignore registration if seen within duration" default:"5m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := parse(os.Args[1:], flags.Default)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return cfg
}

func parse(args []string, options flags.Options) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, options)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// OneShot reports whether the process only performs a single query.
func (c *Config) OneShot() bool {
	return c.Query.Address != ""
}

func (c *Config) validate() error {
	if c.Version || c.OneShot() {
		return nil
	}

	if c.Server.AuthToken == "" {
		return ErrNoAuthToken
	}

	if c.Server.Workers < 1 {
		c.Server.Workers = 1
	}

	if c.A2S.BufferSize == 0 {
		c.A2S.BufferSize = a2s.DefaultBufferSize
	}

	return nil
}
