// Package main implements the syncversion CLI tool.
//
// The syncversion tool keeps the version of a mobile project in step across
// its metadata files. It reads the requested version from the command line
// (or from package.json when none is given) and writes it into:
//
//   - package.json ("version")
//   - every iOS Info.plist (CFBundleShortVersionString and CFBundleVersion)
//   - the Android build.gradle (versionName and versionCode)
//   - the AndroidManifest.xml (android:versionName and android:versionCode, when present)
//
// When a platform file already records the same major.minor.patch, the build
// number is incremented from the recorded one instead of being reset, so
// repeated uploads of the same version stay distinct. The Android versionCode
// is the version with every part padded to two digits: 1.2.3 build 4 becomes
// 1020304. Builds are capped (100 by default); once the cap is reached the
// version has to be bumped or a lower build written with -build.
//
// Command Usage:
//
//	syncversion [flags] [version]
//
// Flags:
//
//	-C:          Project root directory. (Defaults to ".")
//	-config:     Config file relative to the project root. (Defaults to ".syncversion.yml")
//	-build:      Writes the build number as is instead of deciding it automatically.
//	-max-builds: Overrides the build ceiling.
//	-platform:   Restricts the update to ios or android. May be repeated.
//	-commit:     Stages and commits the updated files with git.
//	-dry:        Reports what would change without writing anything.
//	-init:       Writes a config file with the detected defaults.
//	-log-level:  debug, info, warn or error. (Defaults to "warn")
//	-version:    Displays the version of the syncversion CLI tool and exits.
//
// Examples:
//
//	# Sync the version already in package.json
//	syncversion
//
//	# Record 2.1.0 everywhere
//	syncversion 2.1.0
//
//	# Record 2.1.0 build 5
//	syncversion 2.1.0.5
//
//	# Only touch the Android files and commit the result
//	syncversion -platform android -commit 2.1.0
//
// For the library API see the "pkg" package.
package main
