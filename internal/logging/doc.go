// Package logging configures zerolog for the downloader's command-line
// tools and adapts it to the downloader.Logger interface.
//
// Logs always go to stderr: with the stdio link, stdout carries protocol
// bytes. Level, timestamps and colour can be overridden with
// WTP_LOG_LEVEL, WTP_LOG_TIMESTAMP and WTP_LOG_NOCOLOR.
package logging
