// Package misc keeps build identification helpers in one place so they can be
// overridden by the linker during release builds.
package misc

import "runtime/debug"

var (
	appName = "lawmd"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logging, reports and temp files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, either set by the linker or derived
// from module build information.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns VCS revision recorded in build information.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return gitHash
}
