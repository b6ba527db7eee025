// Package version carries the build version, set at link time with
// -ldflags "-X github.com/postforge/postforge/internal/shared/version.Current=v1.2.3".
package version

import "strings"

var Current = "dev"

// Normalize ensures version string has "v" prefix.
// Examples: "1.2.3" -> "v1.2.3", "dev" -> "dev"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || version == "dev" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

func String() string {
	return Normalize(Current)
}
