package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/duckshell/internal/version.Version=0.2.0
//	  -X github.com/soyeahso/duckshell/internal/version.Commit=abc123
//	  -X github.com/soyeahso/duckshell/internal/version.Date=2026-01-01"
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns the full build description printed by `duckshell version`.
func Info() string {
	return fmt.Sprintf("duckshell %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// Banner is the one-line greeting shown by the shell and `dsh --version`.
func Banner() string {
	return fmt.Sprintf("DuckShell v%s - Quack quack!", Version)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
