// Package version holds the service version.
package version

import "fmt"

// Version is the service version, bumped per release.
var Version = "0.4.1"

// DevVersion is the version suffix used outside prod.
var DevVersion = fmt.Sprintf("%s-dev", Version)

func GetCurrentVersion(mode string) string {
	if mode == "prod" {
		return Version
	}
	return DevVersion
}
