package syncversion

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// packageVersionRe matches every "version" field that starts a line. The top
// level one is the least indented.
var packageVersionRe = regexp.MustCompile(`(?m)^[ \t]*"version"\s*:\s*"([^"]*)"`)

// packageVersionIndex returns the start and end of the top level version value
// in data, or nil when package.json records none.
func packageVersionIndex(data []byte) []int {
	var best []int
	bestIndent := -1
	for _, m := range packageVersionRe.FindAllSubmatchIndex(data, -1) {
		indent := bytes.IndexByte(data[m[0]:m[1]], '"')
		if bestIndent < 0 || indent < bestIndent {
			best, bestIndent = m[2:4], indent
		}
	}
	return best
}

// readPackageVersion returns the version recorded in package.json data.
func readPackageVersion(data []byte) (string, bool) {
	m := packageVersionIndex(data)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(string(data[m[0]:m[1]])), true
}

// writePackageVersion replaces the package.json version with version.
func writePackageVersion(data []byte, version string) ([]byte, bool) {
	m := packageVersionIndex(data)
	if m == nil {
		return data, false
	}
	out := make([]byte, 0, len(data)-(m[1]-m[0])+len(version))
	out = append(out, data[:m[0]]...)
	out = append(out, version...)
	out = append(out, data[m[1]:]...)
	return out, true
}

// trimVersionPrefix drops the "v" that tags and package managers put in front
// of a version.
func trimVersionPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && s[1] >= '0' && s[1] <= '9' {
		return s[1:]
	}
	return s
}

// packageVersionFor returns the text to store in package.json for a requested
// version string. Canonical semver is kept verbatim so prerelease tags
// survive; anything else is normalized to major.minor.patch.
func packageVersionFor(requested string, v Version) string {
	sv := "v" + trimVersionPrefix(requested)
	if semver.IsValid(sv) && semver.Canonical(sv) == sv {
		return sv[1:]
	}
	return v.SemVer()
}

// movesBackwards reports whether next is an older semver than old. Versions
// that are not valid semver are never considered older.
func movesBackwards(old, next string) bool {
	o, n := "v"+trimVersionPrefix(old), "v"+trimVersionPrefix(next)
	if !semver.IsValid(o) || !semver.IsValid(n) {
		return false
	}
	return semver.Compare(n, o) < 0
}
