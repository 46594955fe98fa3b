// Package devicetest provides device-side test doubles for the WTP
// downloader: a scripted FakeLink, a Script builder that produces the exact
// host and device byte streams of a session, and a protocol-aware Simulator.
package devicetest
