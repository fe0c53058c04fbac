package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flist-dev/flist/internal/errors"
	"github.com/flist-dev/flist/internal/logging"
)

// Project is the entry data for one project directory: the live list and
// the archive, both ordered newest first.
//
// Project performs no locking of its own. Callers mutate it only while
// holding a valid lock handle; see Session.
type Project struct {
	Root    string
	Config  Config
	Entries []Entry
	Archive []Entry

	logger *logging.Logger
}

// Load reads the entry lists from the project directory. Missing list
// files mean an empty project, not an error.
func Load(root string, cfg Config, logger *logging.Logger) (*Project, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}

	entries, err := readEntries(filepath.Join(root, EntriesFileName))
	if err != nil {
		return nil, errors.NewProjectError("load", root, err)
	}
	archive, err := readEntries(filepath.Join(root, ArchiveFileName))
	if err != nil {
		return nil, errors.NewProjectError("load", root, err)
	}

	return &Project{
		Root:    root,
		Config:  cfg,
		Entries: entries,
		Archive: archive,
		logger:  logger.WithProject(root).WithComponent("project"),
	}, nil
}

func readEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// Save persists both entry lists. Each file is replaced atomically so a
// crash mid-save never leaves a truncated list behind.
func (p *Project) Save() error {
	if err := writeEntries(p.Root, EntriesFileName, p.Entries); err != nil {
		return errors.NewProjectError("save", p.Root, err)
	}
	if err := writeEntries(p.Root, ArchiveFileName, p.Archive); err != nil {
		return errors.NewProjectError("save", p.Root, err)
	}
	p.logger.Debug("project saved",
		"entries", len(p.Entries),
		"archived", len(p.Archive),
	)
	return nil
}

func writeEntries(root, name string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(root, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(root, name))
}

// Insert prepends an entry to the live list.
func (p *Project) Insert(entry Entry) {
	p.Entries = append([]Entry{entry}, p.Entries...)
	p.logger.Info("entry added", "name", entry.Name, "link", entry.Link.String())
}

// ArchiveEntry moves the entry at index from the live list to the head of
// the archive, trimming the archive to the configured maximum.
func (p *Project) ArchiveEntry(index int) error {
	if index < 0 || index >= len(p.Entries) {
		return errors.ErrEntryIndex
	}
	entry := p.Entries[index]
	p.Entries = append(p.Entries[:index], p.Entries[index+1:]...)
	p.Archive = append([]Entry{entry}, p.Archive...)
	if max := p.Config.MaxArchive; max > 0 && len(p.Archive) > max {
		p.Archive = p.Archive[:max]
	}
	p.logger.Info("entry archived", "name", entry.Name)
	return nil
}

// RestoreFromArchive moves the archived entry at index back to the head of
// the live list.
func (p *Project) RestoreFromArchive(index int) error {
	if index < 0 || index >= len(p.Archive) {
		return errors.ErrEntryIndex
	}
	entry := p.Archive[index]
	p.Archive = append(p.Archive[:index], p.Archive[index+1:]...)
	p.Entries = append([]Entry{entry}, p.Entries...)
	p.logger.Info("entry restored", "name", entry.Name)
	return nil
}

// RemoveFromArchive permanently deletes the archived entry at index.
func (p *Project) RemoveFromArchive(index int) error {
	if index < 0 || index >= len(p.Archive) {
		return errors.ErrEntryIndex
	}
	name := p.Archive[index].Name
	p.Archive = append(p.Archive[:index], p.Archive[index+1:]...)
	p.logger.Info("entry deleted from archive", "name", name)
	return nil
}

// Move repositions a live entry from one index to another.
func (p *Project) Move(from, to int) error {
	if from < 0 || from >= len(p.Entries) || to < 0 || to >= len(p.Entries) {
		return errors.ErrEntryIndex
	}
	if from == to {
		return nil
	}
	entry := p.Entries[from]
	p.Entries = append(p.Entries[:from], p.Entries[from+1:]...)
	rest := append([]Entry{}, p.Entries[to:]...)
	p.Entries = append(append(p.Entries[:to], entry), rest...)
	return nil
}
