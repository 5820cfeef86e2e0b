package autostart

import (
	"strconv"
	"strings"
)

// drift names the direction of a version change between the recorded
// registration and the running binary.
func drift(recorded, running string) string {
	switch {
	case isNewer(running, recorded):
		return "upgrade"
	case isNewer(recorded, running):
		return "downgrade"
	default:
		return "changed"
	}
}

// isNewer returns true if a is strictly newer than b.
// Versions are expected as "major.minor.patch" (e.g. "1.6.2").
func isNewer(a, b string) bool {
	av, aErr := parseSemver(a)
	bv, bErr := parseSemver(b)
	if aErr != nil || bErr != nil {
		return false
	}
	for i := 0; i < 3; i++ {
		if av[i] != bv[i] {
			return av[i] > bv[i]
		}
	}
	return false
}

func parseSemver(s string) ([3]int, error) {
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.SplitN(s, ".", 3)
	var v [3]int
	for i := 0; i < 3; i++ {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return v, err
		}
		v[i] = n
	}
	return v, nil
}
