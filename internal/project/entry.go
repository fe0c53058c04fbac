// Package project implements the persistence layer and session lifecycle
// for a flist project: an ordered list of named file/URL entries stored in
// a directory, with an archive of removed entries and a TOML config.
//
// Entry data is mutated only while the process holds a valid lock handle;
// the lock core itself never reads or writes entry data.
package project

import "time"

// EntriesFileName holds the live entry list, newest first.
const EntriesFileName = "entries.json"

// ArchiveFileName holds archived entries, newest first.
const ArchiveFileName = "archive.json"

// Entry is one named link in a project.
type Entry struct {
	Name      string    `json:"name"`
	Link      Link      `json:"link"`
	TimeAdded time.Time `json:"time_added"`
	Metadata  []string  `json:"metadata"`
}

// NewEntry creates an Entry for the given link, stamped with the current
// time.
func NewEntry(name, link string, metadata []string) Entry {
	return Entry{
		Name:      name,
		Link:      ParseLink(link),
		TimeAdded: time.Now().UTC(),
		Metadata:  metadata,
	}
}
