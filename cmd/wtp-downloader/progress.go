package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/moffa90/go-wtptp/downloader"
)

// newProgressBar returns a progress callback that draws a byte-count bar
// for the whole bundle on w.
func newProgressBar(w io.Writer, total uint64) (downloader.ProgressCallback, func()) {
	bar := progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Connecting"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)

	current := -1
	callback := func(p downloader.Progress) {
		if p.Image != "" && p.ImageIndex != current {
			current = p.ImageIndex
			bar.Describe(fmt.Sprintf("[%d/%d] %s", p.ImageIndex+1, p.ImageCount, filepath.Base(p.Image)))
		}
		_ = bar.Set64(int64(p.BytesSent))
		if p.Phase == downloader.PhaseComplete {
			_ = bar.Finish()
		}
	}
	finish := func() {
		if !bar.IsFinished() {
			fmt.Fprintln(w)
		}
	}
	return callback, finish
}
