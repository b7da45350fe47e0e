package build

import (
	"fmt"
	"os"
	"runtime/debug"
)

// Critical should be called if a sanity check has failed, indicating an
// invariant of the coordinator's data model has been violated. Outside the
// "testing" release, Critical prints the call stack for the running
// goroutine and the message to os.Stderr to help locate the violation; it
// panics if DEBUG is set.
func Critical(v ...interface{}) {
	s := "Critical error: " + fmt.Sprintln(v...)
	if Release != "testing" {
		debug.PrintStack()
		os.Stderr.WriteString(s)
	}
	if DEBUG {
		panic(s)
	}
}

// Severe prints the call stack and a message to os.Stderr (outside the
// "testing" release) describing a significant but non-invariant-violating
// problem (a renter transport failure, a ledger RPC failure). If DEBUG is
// set, Severe also panics.
func Severe(v ...interface{}) {
	s := "Severe error: " + fmt.Sprintln(v...)
	if Release != "testing" {
		debug.PrintStack()
		os.Stderr.WriteString(s)
	}
	if DEBUG {
		panic(s)
	}
}
