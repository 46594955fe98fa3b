package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-wtptp/downloader"
	"github.com/moffa90/go-wtptp/firmware"
	"github.com/moffa90/go-wtptp/internal/logging"
	"github.com/moffa90/go-wtptp/transport"
)

// environment holds what run needs from the process, so tests can
// substitute the link and output streams.
type environment struct {
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string
	openLink func(path string, opts ...transport.SerialOption) (transport.Link, error)
}

// run executes one invocation. Image files are opened before the link so a
// bad path never touches the device; on return the link is closed before
// the files.
func run(ctx context.Context, opts options, env environment) error {
	logger := newLogger(opts, env)

	if opts.List {
		return listPorts(env.stdout)
	}

	bundle, err := firmware.OpenBundle(opts.Btim, opts.Images)
	if err != nil {
		return fmt.Errorf("open images: %w", err)
	}
	defer func() {
		if err := bundle.Close(); err != nil {
			logger.Error().Err(err).Msg("close images")
		}
	}()

	for _, img := range bundle.All() {
		logger.Debug().
			Str("image", img.Name).
			Str("role", img.Role.String()).
			Uint64("size", img.Size).
			Msg("image opened")
	}

	link, err := env.openLink(opts.Char, transport.WithBaudRate(opts.Baud))
	if err != nil {
		return err
	}
	defer func() {
		if err := link.Close(); err != nil {
			logger.Error().Err(err).Str("link", link.Name()).Msg("close link")
		}
	}()
	logger.Info().
		Str("link", link.Name()).
		Str("kind", link.Kind().String()).
		Int("baud", opts.Baud).
		Dur("timeout", opts.Timeout).
		Msg("link open")

	sessOpts := []downloader.Option{
		downloader.WithTimeout(opts.Timeout),
		downloader.WithLogger(logging.NewAdapter(logger)),
	}
	if opts.Progress {
		callback, finish := newProgressBar(env.stderr, bundle.TotalSize())
		defer finish()
		sessOpts = append(sessOpts, downloader.WithProgressCallback(callback))
	}

	sess := downloader.New(link, sessOpts...)
	defer sess.Close()

	res, err := sess.Download(ctx, bundle)
	if err != nil {
		return err
	}

	for i, img := range res.Images {
		logger.Info().
			Int("index", i).
			Str("image", img.Name).
			Str("type", img.Type.String()).
			Uint64("bytes", img.Bytes).
			Int("blocks", img.Blocks).
			Msg("downloaded")
	}
	if t, ok := res.Device.BuildTime(); ok {
		logger.Info().
			Str("version", res.Device.VersionString()).
			Str("built", t.Format("2006-01-02")).
			Str("processor", res.Device.ProcessorID).
			Msg("boot ROM")
	}
	return nil
}

func newLogger(opts options, env environment) zerolog.Logger {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	cfg.Out = env.stderr
	logging.ApplyEnvOverrides(&cfg, env.getenv)
	if lvl, ok := logging.ParseLevel(opts.LogLevel); ok {
		cfg.Level = lvl
	}
	return logging.New(cfg)
}

func listPorts(w io.Writer) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(w, p.String())
	}
	return nil
}
