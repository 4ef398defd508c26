// Package buildinfo holds version data injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/pingate/internal/buildinfo.buildVersion=v1.2.0 \
//	  -X github.com/dmitrijs2005/pingate/internal/buildinfo.buildDate=2026-10-16 \
//	  -X github.com/dmitrijs2005/pingate/internal/buildinfo.buildCommit=abc123" ./cmd/pingate
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Version returns the injected version, or "N/A".
func Version() string {
	return valueOrNA(buildVersion)
}

// PrintBuildData writes the build banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", valueOrNA(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", valueOrNA(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", valueOrNA(buildCommit))
}
