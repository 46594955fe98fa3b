// Command wtp-downloader pushes a boot image and application images to a
// device waiting in its WTP boot ROM, over a serial port or stdin/stdout.
//
// Usage:
//
//	wtp-downloader -char /dev/ttyUSB0 -btim TIM.bin -image OBM.bin -image u-boot.bin
//	wtp-downloader -char - -btim TIM.bin < /dev/ttyUSB0 > /dev/ttyUSB0
//	wtp-downloader -config board.toml -progress
//	wtp-downloader -list
//
// Exit status is 0 on success, 1 when the download fails and 2 on a usage
// error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/moffa90/go-wtptp/transport"
)

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "wtp-downloader: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, environment{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		getenv:   os.Getenv,
		openLink: transport.Open,
	})
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "wtp-downloader: %v\n", err)
		os.Exit(1)
	}
}
