// ABOUTME: Version and product identification
// ABOUTME: Reported in startup logs
package version

// Version is overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "0.1.0"

const (
	Product      = "XAudio Player"
	Manufacturer = "XAudio"
)

// Banner is the product name and version as logged at startup
func Banner() string {
	return Product + " " + Version
}
