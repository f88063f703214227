//go:build !release

// Package assert guards invariants whose violation is a programming defect, such as dereferencing
// a stale handle. Development builds panic; release builds (-tags release) compile the checks out.
package assert

import "fmt"

// Enabled reports whether assertions panic in this build.
const Enabled = true

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
