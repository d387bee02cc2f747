package version

import (
	"runtime"
	"strings"

	"github.com/homewire/x10/internal/pkg/build"
)

const DevVersionValue = "dev"

// Version for --version flag.
func Version() string {
	return "Version:    " + build.BuildVersion + "\n" +
		"Git commit: " + build.GitCommit + "\n" +
		"Build date: " + build.BuildDate + "\n" +
		"Go version: " + runtime.Version() + "\n" +
		"Os/Arch:    " + runtime.GOOS + "/" + runtime.GOARCH + "\n"
}

// Short returns the build version without the "v" prefix, eg. "1.2.3".
func Short() string {
	return strings.TrimPrefix(build.BuildVersion, "v")
}
