package version

import "runtime"

// Set at build time via -ldflags "-X fleetbuddy/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	Arch    = runtime.GOARCH
	OS      = runtime.GOOS
)
