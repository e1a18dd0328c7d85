package syncversion

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bcomnes/syncversion/pkg/log"
)

var (
	// ErrNoVersion is returned when no version was requested and package.json
	// does not record one.
	ErrNoVersion = errors.New("no version given and none found in package.json")
	// ErrNothingToSync is returned when none of the configured files exist.
	ErrNothingToSync = errors.New("no version files found to update")
)

// Options controls a sync.
type Options struct {
	Root       string   // Project root. Defaults to the working directory.
	ConfigFile string   // Config file, relative to Root. Defaults to DefaultConfigFile.
	Version    string   // Requested version. Empty reads it from package.json.
	Build      int      // Build to write as is when positive, below the ceiling.
	MaxBuilds  int      // Build ceiling. Zero uses the configured one.
	Platforms  []string // Platforms to update. Empty means all.
	Commit     bool     // Stage and commit the updated files with git.
	Logger     *slog.Logger
}

// TargetResult describes what happened to one platform file.
type TargetResult struct {
	Platform string
	Path     string
	Old      *Version // nil when the file recorded no version.
	New      Version
	Code     int
	Updated  bool
}

// SyncMeta holds metadata about a sync.
type SyncMeta struct {
	OldVersion   string  // package.json version before the sync.
	NewVersion   string  // Semantic version recorded by the sync.
	Requested    Version // Parsed request, before the build decision.
	Targets      []TargetResult
	UpdatedFiles []string // Files written, or that would be written by DryRun.
	Committed    bool
}

type fileWrite struct {
	path string
	data []byte
}

// Run syncs the requested version into package.json and every configured
// platform file, optionally committing the result.
//
// Every file is read and its new contents computed before anything is
// written, so an error such as ErrBuildLimitExceeded leaves the project
// untouched.
func Run(opts Options) (SyncMeta, error) {
	return run(opts, false)
}

// DryRun computes the same SyncMeta as Run without writing any file or
// touching the git repository.
func DryRun(opts Options) (SyncMeta, error) {
	return run(opts, true)
}

func run(opts Options, dry bool) (SyncMeta, error) {
	var meta SyncMeta

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	commit := opts.Commit && !dry

	if commit {
		if err := checkGit(); err != nil {
			return meta, err
		}
	}

	cfg, err := LoadConfig(root, opts.ConfigFile)
	if err != nil {
		return meta, err
	}
	maxBuilds := opts.MaxBuilds
	if maxBuilds <= 0 {
		maxBuilds = cfg.MaxBuilds
	}
	targets, err := cfg.Targets(root, opts.Platforms)
	if err != nil {
		return meta, err
	}

	var writes []fileWrite

	// 1. Work out the requested version, from the argument or package.json.
	pkgPath := resolve(root, cfg.Package)
	pkgData, err := os.ReadFile(pkgPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return meta, fmt.Errorf("reading %s: %w", pkgPath, err)
	}
	havePkg := err == nil
	if havePkg {
		meta.OldVersion, _ = readPackageVersion(pkgData)
	} else {
		logger.Debug("no package file", "path", pkgPath)
	}

	explicit := strings.TrimSpace(opts.Version)
	requestedText := explicit
	if requestedText == "" {
		if meta.OldVersion == "" {
			return meta, ErrNoVersion
		}
		requestedText = meta.OldVersion
	}
	requested := Parse(trimVersionPrefix(requestedText))
	pinned := opts.Build > 0
	if pinned {
		if opts.Build >= maxBuilds {
			return meta, &BuildLimitError{Version: requested, Build: opts.Build, MaxBuilds: maxBuilds}
		}
		requested.Build = opts.Build
	}
	meta.Requested = requested
	meta.NewVersion = requested.SemVer()

	// 2. Carry an explicit version into package.json.
	if explicit != "" && havePkg {
		pv := packageVersionFor(requestedText, requested)
		if movesBackwards(meta.OldVersion, pv) {
			logger.Warn("requested version is older than the current one", "path", pkgPath, "old", meta.OldVersion, "new", pv)
		}
		if pv != meta.OldVersion {
			out, ok := writePackageVersion(pkgData, pv)
			if !ok {
				return meta, fmt.Errorf("%s: %w", pkgPath, ErrFieldMissing)
			}
			writes = append(writes, fileWrite{path: pkgPath, data: out})
		}
		meta.NewVersion = pv
	}

	// 3. Plan every platform file.
	for _, t := range targets {
		res, out, err := planTarget(t, requested, maxBuilds, pinned)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("skipping missing file", "platform", t.Platform(), "path", t.Path())
			continue
		}
		if err != nil {
			return meta, fmt.Errorf("%s: %s: %w", t.Platform(), t.Path(), err)
		}
		logger.Debug("planned update", "platform", res.Platform, "path", res.Path, "version", res.New.String(), "code", res.Code, "changed", res.Updated)
		if res.Updated {
			writes = append(writes, fileWrite{path: t.Path(), data: out})
		}
		meta.Targets = append(meta.Targets, res)
	}
	if len(meta.Targets) == 0 && len(writes) == 0 {
		return meta, ErrNothingToSync
	}

	for _, w := range writes {
		meta.UpdatedFiles = append(meta.UpdatedFiles, w.path)
	}
	if dry {
		return meta, nil
	}

	// 4. Refuse to commit on top of unrelated changes before writing anything.
	if commit && len(writes) > 0 {
		if err := checkUncommittedFiles(root, meta.UpdatedFiles); err != nil {
			return meta, err
		}
	}

	// 5. Write.
	for _, w := range writes {
		if err := os.WriteFile(w.path, w.data, 0644); err != nil {
			return meta, fmt.Errorf("writing %s: %w", w.path, err)
		}
		logger.Info("updated", "path", w.path)
	}

	// 6. Stage and commit.
	if commit && len(writes) > 0 {
		if err := gitCommit(root, commitMessage(meta), meta.UpdatedFiles); err != nil {
			return meta, err
		}
		meta.Committed = true
	}
	return meta, nil
}

// planTarget reads a target file and computes its new contents. A pinned
// build is written as requested instead of being decided by Next.
func planTarget(t Target, requested Version, maxBuilds int, pinned bool) (TargetResult, []byte, error) {
	res := TargetResult{Platform: t.Platform(), Path: t.Path()}

	data, err := os.ReadFile(t.Path())
	if err != nil {
		return res, nil, err
	}
	current, err := t.Current(data)
	if err != nil {
		return res, nil, err
	}
	next := requested
	if !pinned {
		if next, err = Next(current, requested, maxBuilds); err != nil {
			return res, nil, err
		}
	}
	out, err := t.Rewrite(data, next)
	if err != nil {
		return res, nil, err
	}

	res.Old = current
	res.New = next
	res.Code = next.Code()
	res.Updated = !bytes.Equal(out, data)
	return res, out, nil
}

// commitMessage is the recorded version followed by the highest build written.
func commitMessage(meta SyncMeta) string {
	build := meta.Requested.Build
	for _, t := range meta.Targets {
		build = max(build, t.New.Build)
	}
	return fmt.Sprintf("%s (%d)", meta.NewVersion, build)
}

// checkGit verifies that git is available on the system.
func checkGit() error {
	cmd := exec.Command("git", "--version")
	if err := cmd.Run(); err != nil {
		return errors.New("git is not available on the system")
	}
	return nil
}

// gitCommit stages files and commits them in the repository containing root.
func gitCommit(root, message string, files []string) error {
	var stderr bytes.Buffer

	addArgs := []string{"add", "--"}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve path %q: %w", f, err)
		}
		addArgs = append(addArgs, abs)
	}
	addCmd := exec.Command("git", addArgs...)
	addCmd.Dir = root
	addCmd.Stderr = &stderr
	if err := addCmd.Run(); err != nil {
		return fmt.Errorf("git add failed: %v, detail: %s", err, stderr.String())
	}

	commitCmd := exec.Command("git", "commit", "-m", message)
	commitCmd.Dir = root
	stderr.Reset()
	commitCmd.Stderr = &stderr
	if err := commitCmd.Run(); err != nil {
		return fmt.Errorf("git commit failed: %v, detail: %s", err, stderr.String())
	}
	return nil
}

// checkUncommittedFiles ensures only allowed files are modified in the
// repository containing root.
func checkUncommittedFiles(root string, allowed []string) error {
	topCmd := exec.Command("git", "rev-parse", "--show-toplevel")
	topCmd.Dir = root
	top, err := topCmd.Output()
	if err != nil {
		return fmt.Errorf("failed to locate git repository: %w", err)
	}
	topDir := strings.TrimSpace(string(top))

	statusCmd := exec.Command("git", "status", "--porcelain")
	statusCmd.Dir = root
	out, err := statusCmd.Output()
	if err != nil {
		return fmt.Errorf("failed to check git status: %w", err)
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[canonicalPath(f)] = struct{}{}
	}

	var disallowed []string
	for _, line := range bytes.Split(out, []byte("\n")) {
		if len(line) < 4 {
			continue
		}
		path := string(bytes.TrimSpace(line[3:]))
		if _, ok := allowedSet[canonicalPath(filepath.Join(topDir, path))]; !ok {
			disallowed = append(disallowed, path)
		}
	}

	if len(disallowed) > 0 {
		return fmt.Errorf("working directory is dirty; uncommitted files not included in commit: %v", disallowed)
	}
	return nil
}

// canonicalPath makes paths from git and from the config comparable.
func canonicalPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}
