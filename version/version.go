package version

import (
	"fmt"
	"runtime"
)

var (
	// NAME is the program name.
	NAME = "dsfetch"
	// REVISION is the git commit, set by ldflags.
	REVISION = "HEAD"
	// VERSION is the release tag, set by ldflags.
	VERSION = "unknown"
	// BUILTAT is the build timestamp, set by ldflags.
	BUILTAT = "now"
)

// String returns the multi-line version banner.
func String() string {
	version := ""
	version += fmt.Sprintf("Version:        %s\n", VERSION)
	version += fmt.Sprintf("Git hash:       %s\n", REVISION)
	version += fmt.Sprintf("Built:          %s\n", BUILTAT)
	version += fmt.Sprintf("Golang version: %s\n", runtime.Version())
	version += fmt.Sprintf("OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return version
}

// UserAgent is sent with every outbound request.
func UserAgent() string {
	return NAME + "/" + VERSION
}
