package syncversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxBuilds is the build ceiling used when none is configured.
const DefaultMaxBuilds = 100

// ErrBuildLimitExceeded is matched by the error Next returns when the
// auto-incremented build would reach the build ceiling.
var ErrBuildLimitExceeded = errors.New("build limit exceeded")

// Version is a parsed version descriptor. Build is the counter managed by Next.
type Version struct {
	Major int
	Minor int
	Patch int
	Build int
}

// Default literals for the major, minor, patch and build tokens.
var fieldDefaults = [4]string{"0", "1", "0", "1"}

// Parse reads a dotted version string like "1.2.3" or "1.2.3.4".
// It never fails: absent or empty tokens take their defaults
// (major 0, minor 1, patch 0, build 1), each token is cut at its first
// non-digit character, and anything left that is not a number becomes 0.
func Parse(s string) Version {
	tokens := strings.SplitN(s, ".", 4)
	var fields [4]int
	for i := range fields {
		tok := ""
		if i < len(tokens) {
			tok = tokens[i]
		}
		fields[i] = parseField(tok, fieldDefaults[i])
	}
	return Version{Major: fields[0], Minor: fields[1], Patch: fields[2], Build: fields[3]}
}

// parseField converts a single version token, falling back to def when the
// token is empty.
func parseField(tok, def string) int {
	if tok == "" {
		tok = def
	}
	if i := strings.IndexFunc(tok, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Equal reports whether v and o name the same major.minor.patch.
// Build is not compared.
func (v Version) Equal(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

// SemVer returns "major.minor.patch".
func (v Version) SemVer() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// String returns "major.minor.patch.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Code encodes v as an integer build code by concatenating every field
// padded to at least two digits: 1.2.3.4 becomes 1020304.
//
// Codes are unique and ordered like the versions they encode only while every
// field stays below 100. Wider fields are never truncated, they just make the
// concatenation longer. A concatenation that does not fit in an int saturates.
func (v Version) Code() int {
	s := fmt.Sprintf("%02d%02d%02d%02d", v.Major, v.Minor, v.Patch, v.Build)
	n, _ := strconv.Atoi(s)
	return n
}

// BuildLimitError reports that auto-incrementing the build of Version would
// reach MaxBuilds.
type BuildLimitError struct {
	Version   Version
	Build     int
	MaxBuilds int
}

func (e *BuildLimitError) Error() string {
	return fmt.Sprintf("build %d of version %s reaches the limit of %d builds; bump the version or set the build manually",
		e.Build, e.Version.SemVer(), e.MaxBuilds)
}

func (e *BuildLimitError) Is(target error) bool {
	return target == ErrBuildLimitExceeded
}

// Next decides the version to record given the version currently stored
// (nil on a first run) and the requested one.
//
// When the requested major.minor.patch matches current and the requested build
// is lower than the stored one, the build is incremented from current.
// Otherwise requested is returned as is. A maxBuilds of zero or less selects
// DefaultMaxBuilds.
func Next(current *Version, requested Version, maxBuilds int) (Version, error) {
	if maxBuilds <= 0 {
		maxBuilds = DefaultMaxBuilds
	}
	if current == nil || !current.Equal(requested) || requested.Build >= current.Build {
		return requested, nil
	}

	build := current.Build + 1
	if build >= maxBuilds {
		return Version{}, &BuildLimitError{Version: requested, Build: build, MaxBuilds: maxBuilds}
	}
	next := requested
	next.Build = build
	return next, nil
}
