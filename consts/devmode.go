package consts

import "strings"

var (
	devmode string = "false"

	// Version and GitCommit are set at link time
	Version   string = "dev"
	GitCommit string = "unknown"
)

func IsDevMode() bool {
	return strings.ToLower(devmode) == "true"
}

// UserAgent is sent with every outgoing HTTP request
func UserAgent() string {
	return "GeoSnap/" + Version + " (" + GitCommit + ")"
}
