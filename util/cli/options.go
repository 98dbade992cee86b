package cli

import (
	"flag"
	"time"
)

type Options struct {
	ChannelBufferSize int
	MaxAttempts       int
	NumWorkers        int
	PrintHelp         bool
	RequeueTimeout    time.Duration
	Sweep             bool
}

var opts = Options{}
var defaultAttempts = 3
var defaultBufSize = 20
var defaultWorkers = 2
var defaultTimeout = 1 * time.Minute

var EnvMessage = `Settings come from a .env file and the environment. These
environment vars select the file:

BRANDPULSE_CONFIG_DIR - Path to the directory containing the .env settings file.

BRANDPULSE_ENV - Name of the configuration to load. For example:
    dev  - Loads .env.dev from BRANDPULSE_CONFIG_DIR
    demo - Loads .env.demo from BRANDPULSE_CONFIG_DIR

Any setting in the file can be overridden by an environment variable of
the same name, e.g. API_ENDPOINT or S3_BUCKET.
`

func Init() {
	flag.IntVar(&opts.ChannelBufferSize, "bufsize", defaultBufSize, "Maximum number of in-flight NSQ messages")
	flag.IntVar(&opts.MaxAttempts, "max-attempts", defaultAttempts, "Maximum number of times the worker should attempt to delete a submission's objects")
	flag.IntVar(&opts.NumWorkers, "workers", defaultWorkers, "Number of cleanups to run at once")
	flag.BoolVar(&opts.PrintHelp, "help", false, "Print help message")
	flag.DurationVar(&opts.RequeueTimeout, "requeue-timeout", defaultTimeout, "Requeue delay for cleanups that failed. Format examples: 500ms, 12s, 10m, 3m30s")
	flag.BoolVar(&opts.Sweep, "sweep", false, "Clean up every orphaned submission in the journal, then exit")
}

func ParseOpts() Options {
	flag.Parse()
	return opts
}

func PrintDefaults() {
	flag.PrintDefaults()
}
