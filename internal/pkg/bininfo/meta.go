// Variables in this file are injected at link time with -ldflags "-X ...".
// Renaming them breaks the release build.

package bininfo

var (
	// Version is the SemVer version of the gateway admin binary, with the git commit
	// appended after a plus sign [+] when available.
	Version = "v0.0.0"

	// BuildTime is the RFC3339 time at which the binary was built.
	BuildTime = "1970-01-01T00:00:00Z"
)
