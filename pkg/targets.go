package syncversion

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxAndroidVersionCode is the largest versionCode Google Play accepts.
const MaxAndroidVersionCode = 2100000000

// androidMaxBuilds bounds the build kept in the last two versionCode digits.
const androidMaxBuilds = 100

var (
	// ErrBuildSetting is returned when a plist value refers to an Xcode build
	// setting such as $(MARKETING_VERSION) instead of holding a version.
	ErrBuildSetting = errors.New("value is an Xcode build setting")
	// ErrFieldMissing is returned when a file lacks a version field that
	// cannot be added automatically.
	ErrFieldMissing = errors.New("version field not found")
)

// Target reads and rewrites the version fields of one platform file.
type Target interface {
	// Platform is the platform the file belongs to ("ios" or "android").
	Platform() string
	// Path is the location of the file.
	Path() string
	// Current returns the version recorded in data, or nil when none is.
	Current(data []byte) (*Version, error)
	// Rewrite returns data with v written into its version fields.
	Rewrite(data []byte, v Version) ([]byte, error)
}

// Every pattern captures (prefix)(value)(suffix).
var (
	plistShortVersionRe  = regexp.MustCompile(`(<key>CFBundleShortVersionString</key>\s*<string>)([^<]*)(</string>)`)
	plistBundleVersionRe = regexp.MustCompile(`(<key>CFBundleVersion</key>\s*<string>)([^<]*)(</string>)`)

	gradleVersionNameRe = regexp.MustCompile(`(?m)(^[ \t]*versionName[ \t]*=?[ \t]*["'])([^"'\n]*)(["'])`)
	gradleVersionCodeRe = regexp.MustCompile(`(?m)(^[ \t]*versionCode[ \t]*=?[ \t]*)(\d+)()`)

	manifestVersionNameRe = regexp.MustCompile(`(android:versionName\s*=\s*")([^"]*)(")`)
	manifestVersionCodeRe = regexp.MustCompile(`(android:versionCode\s*=\s*")([^"]*)(")`)
)

// findValue returns the value group of the first match of re.
func findValue(re *regexp.Regexp, data []byte) (string, bool) {
	m := re.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[2]), true
}

// replaceValue swaps the value group of the first match of re for value,
// leaving everything around it untouched.
func replaceValue(re *regexp.Regexp, data []byte, value string) ([]byte, bool) {
	m := re.FindSubmatchIndex(data)
	if m == nil {
		return data, false
	}
	out := make([]byte, 0, len(data)-(m[5]-m[4])+len(value))
	out = append(out, data[:m[4]]...)
	out = append(out, value...)
	out = append(out, data[m[5]:]...)
	return out, true
}

type plistTarget struct {
	path string
}

// NewPlistTarget returns the target for an iOS Info.plist. The marketing
// version goes to CFBundleShortVersionString and the build number to
// CFBundleVersion.
func NewPlistTarget(path string) Target {
	return &plistTarget{path: path}
}

func (t *plistTarget) Platform() string { return "ios" }
func (t *plistTarget) Path() string     { return t.path }

func (t *plistTarget) Current(data []byte) (*Version, error) {
	short, ok := findValue(plistShortVersionRe, data)
	if !ok {
		return nil, nil
	}
	if isBuildSetting(short) {
		return nil, fmt.Errorf("CFBundleShortVersionString %q: %w", short, ErrBuildSetting)
	}
	v := Parse(short)
	if build, ok := findValue(plistBundleVersionRe, data); ok {
		if isBuildSetting(build) {
			return nil, fmt.Errorf("CFBundleVersion %q: %w", build, ErrBuildSetting)
		}
		v.Build = parseField(build, fieldDefaults[3])
	}
	return &v, nil
}

func (t *plistTarget) Rewrite(data []byte, v Version) ([]byte, error) {
	var err error
	if data, err = setPlistString(data, plistShortVersionRe, "CFBundleShortVersionString", v.SemVer()); err != nil {
		return nil, err
	}
	return setPlistString(data, plistBundleVersionRe, "CFBundleVersion", strconv.Itoa(v.Build))
}

// setPlistString replaces the string value of key, adding the key to the end
// of the top level dict when it is missing.
func setPlistString(data []byte, re *regexp.Regexp, key, value string) ([]byte, error) {
	if out, ok := replaceValue(re, data, value); ok {
		return out, nil
	}
	end := bytes.LastIndex(data, []byte("</dict>"))
	if end < 0 {
		return nil, fmt.Errorf("%s: no top level dict: %w", key, ErrFieldMissing)
	}
	entry := fmt.Sprintf("\t<key>%s</key>\n\t<string>%s</string>\n", key, value)
	out := make([]byte, 0, len(data)+len(entry))
	out = append(out, data[:end]...)
	out = append(out, entry...)
	out = append(out, data[end:]...)
	return out, nil
}

func isBuildSetting(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "$(") || strings.HasPrefix(s, "${")
}

// androidTarget handles both build.gradle and AndroidManifest.xml, which
// differ only in how versionName and versionCode are spelled. When required
// is set, missing fields are an error instead of a no-op.
type androidTarget struct {
	path     string
	nameRe   *regexp.Regexp
	codeRe   *regexp.Regexp
	required bool
}

// NewGradleTarget returns the target for an Android build.gradle or
// build.gradle.kts. versionName receives major.minor.patch and versionCode
// receives the encoded build code.
func NewGradleTarget(path string) Target {
	return &androidTarget{path: path, nameRe: gradleVersionNameRe, codeRe: gradleVersionCodeRe, required: true}
}

// NewManifestTarget returns the target for an AndroidManifest.xml. Manifests
// without android:versionName and android:versionCode are left untouched.
func NewManifestTarget(path string) Target {
	return &androidTarget{path: path, nameRe: manifestVersionNameRe, codeRe: manifestVersionCodeRe}
}

func (t *androidTarget) Platform() string { return "android" }
func (t *androidTarget) Path() string     { return t.path }

// Current recovers the build from the last two digits of versionCode.
func (t *androidTarget) Current(data []byte) (*Version, error) {
	name, ok := findValue(t.nameRe, data)
	if !ok {
		return nil, nil
	}
	v := Parse(name)
	if code, ok := findValue(t.codeRe, data); ok && strings.TrimSpace(code) != "" {
		v.Build = parseField(code, "0") % 100
	}
	return &v, nil
}

func (t *androidTarget) Rewrite(data []byte, v Version) ([]byte, error) {
	if v.Build >= androidMaxBuilds {
		return nil, &BuildLimitError{Version: v, Build: v.Build, MaxBuilds: androidMaxBuilds}
	}
	code := v.Code()
	if code > MaxAndroidVersionCode {
		return nil, fmt.Errorf("versionCode %d for %s exceeds the Android maximum of %d", code, v, MaxAndroidVersionCode)
	}
	data, nameOK := replaceValue(t.nameRe, data, v.SemVer())
	data, codeOK := replaceValue(t.codeRe, data, strconv.Itoa(code))
	if t.required {
		if !nameOK {
			return nil, fmt.Errorf("versionName: %w", ErrFieldMissing)
		}
		if !codeOK {
			return nil, fmt.Errorf("versionCode: %w", ErrFieldMissing)
		}
	}
	return data, nil
}
