package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X github.com/example/shopfloor/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("shopfloor %s (commit: %s, built: %s, %s/%s)", Version, shortCommit(), BuildTime, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent by the REST client.
func UserAgent() string {
	return "shopfloor/" + Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
