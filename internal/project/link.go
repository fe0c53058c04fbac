package project

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// LinkKind classifies what a link points at.
type LinkKind int

const (
	// KindURL is anything that is not an absolute filesystem path.
	KindURL LinkKind = iota
	// KindFile is an absolute path to a regular file (or one that does not
	// currently exist).
	KindFile
	// KindDirectory is an absolute path to a directory.
	KindDirectory
)

// String returns the kind's name.
func (k LinkKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "url"
	}
}

// Link is a file, directory, or URL reference. It serializes as a bare
// string; the kind is re-inferred on load, so a path that became a
// directory (or vanished) is classified by its current state.
type Link struct {
	raw  string
	kind LinkKind
}

// ParseLink classifies a raw link string. Absolute paths are files or
// directories depending on what is on disk; everything else is a URL.
func ParseLink(s string) Link {
	if filepath.IsAbs(s) {
		if info, err := os.Stat(s); err == nil && info.IsDir() {
			return Link{raw: s, kind: KindDirectory}
		}
		return Link{raw: s, kind: KindFile}
	}
	return Link{raw: s, kind: KindURL}
}

// String returns the raw link text.
func (l Link) String() string {
	return l.raw
}

// Kind returns the link's classification.
func (l Link) Kind() LinkKind {
	return l.kind
}

// InferName derives a display name when the user did not provide one:
// the basename for files and directories, the raw text for URLs (callers
// may improve on that with a fetched page title).
func (l Link) InferName() string {
	switch l.kind {
	case KindFile, KindDirectory:
		return filepath.Base(l.raw)
	default:
		return l.raw
	}
}

// MarshalJSON serializes the link as its raw string.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.raw)
}

// UnmarshalJSON re-infers the link kind from the stored string.
func (l *Link) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLink(s)
	return nil
}

// launch is swappable in tests to capture spawned commands.
var launch = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}
	// Detach: the opened application outlives the flist process.
	return cmd.Process.Release()
}

// Open opens the link with the OS default handler: the browser for URLs,
// the associated application for files, the file manager for directories.
func (l Link) Open() error {
	name, args := openCommand(runtime.GOOS, l.raw)
	return launch(name, args...)
}

// Explore reveals the link in the file manager. For files this selects the
// file within its directory where the platform supports it.
func (l Link) Explore() error {
	name, args := exploreCommand(runtime.GOOS, l.kind, l.raw)
	return launch(name, args...)
}

// openCommand returns the platform launcher for a link target.
func openCommand(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// exploreCommand returns the platform file-manager invocation for a link.
func exploreCommand(goos string, kind LinkKind, target string) (string, []string) {
	switch goos {
	case "windows":
		if kind == KindFile {
			return "explorer", []string{"/select,", target}
		}
		return "explorer", []string{target}
	case "darwin":
		if kind == KindFile {
			return "open", []string{"-R", target}
		}
		return "open", []string{target}
	default:
		if kind == KindFile {
			return "xdg-open", []string{filepath.Dir(target)}
		}
		return "xdg-open", []string{target}
	}
}

// PreferredFile is the file chosen for quick launch from a directory link.
type PreferredFile struct {
	File      Link
	Extension string
}

// Preferred selects the quick-launch file for the link. File links are
// their own preference. For directory links the configured suffix layers
// are consulted in order: the first layer matching exactly one file in the
// directory wins, a layer matching several aborts the search, and a layer
// matching none falls through to the next. URL links have no preference.
func (l Link) Preferred(suffixLayers [][]string) (*PreferredFile, error) {
	switch l.kind {
	case KindFile:
		ext := filepath.Ext(l.raw)
		if ext != "" {
			ext = ext[1:] // drop the dot
		}
		return &PreferredFile{File: l, Extension: ext}, nil
	case KindDirectory:
		return preferredInDir(l.raw, suffixLayers)
	default:
		return nil, nil
	}
}

func preferredInDir(dir string, suffixLayers [][]string) (*PreferredFile, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	bySuffix := make(map[string][]string)
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext == "" {
			continue
		}
		ext = ext[1:]
		bySuffix[ext] = append(bySuffix[ext], filepath.Join(dir, de.Name()))
	}

	for _, layer := range suffixLayers {
		var matches []PreferredFile
		for _, suffix := range layer {
			for _, path := range bySuffix[suffix] {
				matches = append(matches, PreferredFile{
					File:      ParseLink(path),
					Extension: suffix,
				})
			}
			if len(matches) > 1 {
				break
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return &matches[0], nil
		default:
			// Ambiguous layer: stop rather than guess.
			return nil, nil
		}
	}
	return nil, nil
}
