// Package syncversion keeps a project's version in sync across package.json
// and its iOS and Android metadata files.
//
// It provides:
//   - A permissive version model: Parse, Version.Equal, Next (the build
//     increment decision) and Version.Code (the numeric build code).
//   - Targets that read and rewrite the version fields of Info.plist,
//     build.gradle and AndroidManifest.xml files without disturbing the rest
//     of the file.
//   - A YAML config file (.syncversion.yml) locating those files.
//   - Run and DryRun, which tie the above together and can commit the result
//     with git.
//
// Usage Example:
//
//	import (
//	    "log"
//	    syncversion "github.com/bcomnes/syncversion/pkg"
//	)
//
//	func main() {
//	    meta, err := syncversion.Run(syncversion.Options{Root: ".", Version: "1.4.0"})
//	    if err != nil {
//	        log.Fatalf("version sync failed: %v", err)
//	    }
//	    log.Printf("synced %s into %v", meta.NewVersion, meta.UpdatedFiles)
//	}
//
// For additional details and API documentation, see https://pkg.go.dev/github.com/bcomnes/syncversion.
package syncversion
