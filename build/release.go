package build

// Release is set at build time via -ldflags to "dev", "standard", or
// "testing". It governs which set of timeouts and intervals the coordinator
// and renter processes use (see modules/consts.go).
var Release = "standard"

// DEBUG indicates whether the binary was built with extra sanity checks and
// panics-on-Critical enabled. It is normally only true for "dev" and
// "testing" releases.
var DEBUG = false

func init() {
	if Release == "dev" || Release == "testing" {
		DEBUG = true
	}
}
