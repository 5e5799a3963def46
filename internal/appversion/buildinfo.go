// Package appversion exposes the version stamped into the binary at
// release time.
package appversion

// Injected via -ldflags "-X eco/internal/appversion.version=... ".
// Untagged builds report "dev".
var (
	version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var
	commit  = ""    //nolint:gochecknoglobals // ldflags requires package-level var
)

// String returns the release version, with the short commit appended
// when one was stamped in.
func String() string {
	if commit == "" {
		return version
	}
	return version + " (" + commit + ")"
}
