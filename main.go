// Package main implements a CLI tool to sync a version into package.json and
// the iOS and Android metadata files of a project.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	syncversion "github.com/bcomnes/syncversion/pkg"
	"github.com/bcomnes/syncversion/pkg/log"
)

type arrayFlags []string

func (a *arrayFlags) String() string {
	return fmt.Sprint(*a)
}

func (a *arrayFlags) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*a = append(*a, v)
		}
	}
	return nil
}

func usage() {
	msg := `Usage:
  syncversion [options] [version]

Writes a version into package.json, the iOS Info.plist files and the Android build.gradle
and AndroidManifest.xml of a project. Without a version argument the version in package.json
is used. When the version is unchanged since the last run, the build number is incremented.

Examples:
  syncversion
  syncversion 1.2.3
  syncversion -build 7 1.2.3
  syncversion -platform android -dry

Positional arguments:
  [version]          Version to record, like 1.2.3 or 1.2.3.4 (the fourth part is the build)

Options:
`
	fmt.Fprint(os.Stderr, msg)
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

func run() int {
	root := flag.String("C", ".", "Project root directory")
	configFile := flag.String("config", syncversion.DefaultConfigFile, "Config file, relative to the project root")
	build := flag.Int("build", 0, "Write this build number as is instead of deciding it automatically. Must be below the build ceiling.")
	maxBuilds := flag.Int("max-builds", 0, "Build ceiling (default from config, else 100)")
	var platforms arrayFlags
	flag.Var(&platforms, "platform", "Platform to update: ios or android. May be repeated.")
	commit := flag.Bool("commit", false, "Stage and commit the updated files with git")
	dryRun := flag.Bool("dry", false, "Perform a dry run without modifying any files")
	initConfig := flag.Bool("init", false, "Write a config file with the detected defaults and exit")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error")
	showVersion := flag.Bool("version", false, "Show CLI version and exit")
	help := flag.Bool("help", false, "Show help message and exit")

	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		return 0
	}
	if *showVersion {
		fmt.Println("syncversion CLI version", Version)
		return 0
	}

	level, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	logger := log.New(os.Stderr, level)

	if *initConfig {
		path := *configFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(*root, path)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
			return 1
		}
		if err := syncversion.WriteConfig(path, syncversion.DefaultConfig(*root)); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		fmt.Println("Wrote", path)
		return 0
	}

	// Guard against misplaced flags after positional args.
	for _, arg := range flag.Args() {
		if strings.HasPrefix(arg, "-") {
			fmt.Fprintln(os.Stderr, "Error: Flags must be specified before the version. Please reorder your arguments.")
			usage()
			return 1
		}
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Error: at most one [version] positional argument is allowed")
		usage()
		return 1
	}
	var versionArg string
	if len(args) == 1 {
		versionArg = args[0]
	}

	opts := syncversion.Options{
		Root:       *root,
		ConfigFile: *configFile,
		Version:    versionArg,
		Build:      *build,
		MaxBuilds:  *maxBuilds,
		Platforms:  platforms,
		Commit:     *commit,
		Logger:     logger,
	}

	var meta syncversion.SyncMeta
	if *dryRun {
		meta, err = syncversion.DryRun(opts)
	} else {
		meta, err = syncversion.Run(opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, syncversion.ErrBuildLimitExceeded) {
			fmt.Fprintln(os.Stderr, "Hint: pass a new version, or use -build to write a lower build number.")
		}
		return 1
	}

	// Summary
	if *dryRun {
		fmt.Println("Dry run complete — no files were modified.")
	} else {
		fmt.Println("Version sync successful!")
	}
	if meta.OldVersion != "" {
		fmt.Printf("Old Version: %s\n", meta.OldVersion)
	}
	fmt.Printf("New Version: %s\n", meta.NewVersion)
	if len(meta.Targets) > 0 {
		fmt.Println(renderTargets(*root, meta.Targets))
	}

	if len(meta.UpdatedFiles) > 0 {
		if *dryRun {
			fmt.Println("Files that would be updated:")
		} else {
			fmt.Println("Files updated:")
		}
		for _, f := range meta.UpdatedFiles {
			fmt.Printf("  %s\n", f)
		}
	} else {
		fmt.Println("Everything is already up to date.")
	}
	if meta.Committed {
		fmt.Println("Changes committed.")
	}
	return 0
}

// renderTargets lays out the per file results as a table.
func renderTargets(root string, targets []syncversion.TargetResult) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"platform", "file", "old", "new", "code"})
	for _, t := range targets {
		path := t.Path
		if rel, err := filepath.Rel(root, t.Path); err == nil {
			path = rel
		}
		old := "-"
		if t.Old != nil {
			old = t.Old.String()
		}
		tw.AppendRow(table.Row{t.Platform, path, old, t.New.String(), strconv.Itoa(t.Code)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	return tw.Render()
}
