package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/moffa90/go-wtptp/downloader"
	"github.com/moffa90/go-wtptp/internal/logging"
	"github.com/moffa90/go-wtptp/protocol"
)

// errUsage marks command-line mistakes, which exit with status 2.
var errUsage = errors.New("usage error")

// options is the resolved configuration of one invocation.
type options struct {
	Char     string
	Btim     string
	Images   []string
	Baud     int
	Timeout  time.Duration
	LogLevel string
	Progress bool
	List     bool
}

func defaultOptions() options {
	return options{
		Baud:    protocol.DefaultBaudRate,
		Timeout: downloader.DefaultTimeout,
	}
}

type fileConfig struct {
	Char     string   `toml:"char"`
	Btim     string   `toml:"btim"`
	Images   []string `toml:"images"`
	Baud     int      `toml:"baud"`
	Timeout  string   `toml:"timeout"`
	LogLevel string   `toml:"log_level"`
	Progress bool     `toml:"progress"`
}

// imageList collects repeated -image flags in order.
type imageList []string

func (l *imageList) String() string {
	return strings.Join(*l, ",")
}

func (l *imageList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	*l = append(*l, v)
	return nil
}

// parseArgs resolves defaults, then the optional TOML file, then the flags
// given explicitly on the command line.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("wtp-downloader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: wtp-downloader -char <device|-> -btim <boot image> [-image <app image>]...\n\n")
		fs.PrintDefaults()
	}

	var (
		flagOpts   = defaultOptions()
		images     imageList
		configPath string
	)
	fs.StringVar(&flagOpts.Char, "char", "", "character device of the target, or - for stdin/stdout")
	fs.StringVar(&flagOpts.Btim, "btim", "", "boot image, transferred first")
	fs.Var(&images, "image", "application image; repeat for several, transferred in order")
	fs.IntVar(&flagOpts.Baud, "baud", protocol.DefaultBaudRate, "serial line speed")
	fs.DurationVar(&flagOpts.Timeout, "timeout", downloader.DefaultTimeout, "time to wait for each device response")
	fs.StringVar(&flagOpts.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	fs.BoolVar(&flagOpts.Progress, "progress", false, "show a progress bar on stderr")
	fs.BoolVar(&flagOpts.List, "list", false, "list serial ports and exit")
	fs.StringVar(&configPath, "config", "", "TOML file with default settings")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return options{}, err
		}
		return options{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	flagOpts.Images = images

	opts := defaultOptions()
	if configPath != "" {
		if err := loadFileConfig(configPath, &opts); err != nil {
			return options{}, fmt.Errorf("%w: %v", errUsage, err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "char":
			opts.Char = flagOpts.Char
		case "btim":
			opts.Btim = flagOpts.Btim
		case "image":
			opts.Images = flagOpts.Images
		case "baud":
			opts.Baud = flagOpts.Baud
		case "timeout":
			opts.Timeout = flagOpts.Timeout
		case "log-level":
			opts.LogLevel = flagOpts.LogLevel
		case "progress":
			opts.Progress = flagOpts.Progress
		case "list":
			opts.List = flagOpts.List
		}
	})

	if err := opts.validate(); err != nil {
		return options{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return opts, nil
}

func loadFileConfig(path string, opts *options) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("char") {
		opts.Char = strings.TrimSpace(raw.Char)
	}
	if meta.IsDefined("btim") {
		opts.Btim = strings.TrimSpace(raw.Btim)
	}
	if meta.IsDefined("images") {
		opts.Images = normalizePaths(raw.Images)
	}
	if meta.IsDefined("baud") {
		opts.Baud = raw.Baud
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		opts.Timeout = d
	}
	if meta.IsDefined("log_level") {
		opts.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("progress") {
		opts.Progress = raw.Progress
	}
	return nil
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (o options) validate() error {
	if o.LogLevel != "" {
		if _, ok := logging.ParseLevel(o.LogLevel); !ok {
			return fmt.Errorf("unknown log level %q", o.LogLevel)
		}
	}
	if o.List {
		return nil
	}
	if o.Char == "" {
		return fmt.Errorf("-char is required")
	}
	if o.Btim == "" {
		return fmt.Errorf("-btim is required")
	}
	if o.Baud <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", o.Baud)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", o.Timeout)
	}
	return nil
}
