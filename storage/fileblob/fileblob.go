package fileblob

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"
)

// timePrefixFormat renders to exactly 20 characters including the trailing
// underscore; Rename relies on that length to preserve the prefix.
const timePrefixFormat = "2006-01-02-15-04-05_"

// timePrefixLen is the length of the timestamp prefix of every blob name
const timePrefixLen = len(timePrefixFormat)

// Store keeps exactly one blob per live document under a media root.
// Blob paths are relative to the root and always have the form
// documentos/processo_<caseID>/<timestamp prefix><nome><ext>, so a fresh
// timestamp keeps paths unique even when names collide across uploads.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore returns a Store rooted at dir, creating it if necessary
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("fileblob: media root must be specified")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "fileblob: failed to create media root")
	}
	return &Store{root: dir, now: time.Now}, nil
}

// Root returns the media root directory
func (s *Store) Root() string {
	return s.root
}

// CaseDir returns the relative blob directory for a case
func CaseDir(caseID uint) string {
	return fmt.Sprintf("documentos/processo_%d", caseID)
}

// Save writes the content to a freshly timestamped blob path derived from
// the case, the display name and the extension of the original filename,
// and returns the relative path.
func (s *Store) Save(caseID uint, nome, origFilename string, r io.Reader) (string, error) {
	name := s.now().UTC().Format(timePrefixFormat) + nome + path.Ext(origFilename)
	rel := path.Join(CaseDir(caseID), name)
	abs := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrap(err, "fileblob: failed to create case directory")
	}
	f, err := os.Create(abs)
	if err != nil {
		return "", errors.Wrap(err, "fileblob: failed to create blob")
	}
	defer f.Close()
	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "fileblob: failed to write blob")
	}
	return rel, nil
}

// Rename renames the blob at oldRel in place for a new display name: the
// 20-character timestamp prefix and the extension of the old base filename
// are kept, only the name part between them changes. It returns the new
// relative path.
func (s *Store) Rename(oldRel, nome string) (string, error) {
	dir := path.Dir(oldRel)
	oldBase := path.Base(oldRel)
	prefix := oldBase
	if len(prefix) > timePrefixLen {
		prefix = prefix[:timePrefixLen]
	}
	newBase := prefix + nome + path.Ext(oldBase)
	if newBase == oldBase {
		return oldRel, nil
	}
	newRel := path.Join(dir, newBase)
	if err := os.Rename(s.Abs(oldRel), s.Abs(newRel)); err != nil {
		return "", errors.Wrap(err, "fileblob: failed to rename blob")
	}
	return newRel, nil
}

// Remove deletes the blob if it is still present on disk; absence is
// tolerated, not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" || !s.Exists(rel) {
		return nil
	}
	if err := os.Remove(s.Abs(rel)); err != nil {
		return errors.Wrap(err, "fileblob: failed to remove blob")
	}
	return nil
}

// Exists reports whether the blob is present on disk
func (s *Store) Exists(rel string) bool {
	return rel != "" && fileutils.FileExists(s.Abs(rel))
}

// Open opens the blob for reading
func (s *Store) Open(rel string) (*os.File, error) {
	return os.Open(s.Abs(rel))
}

// Abs resolves a relative blob path against the media root. Path segments
// are cleaned so a stored reference can never escape the root.
func (s *Store) Abs(rel string) string {
	clean := path.Clean("/" + strings.ReplaceAll(rel, "\\", "/"))
	return filepath.Join(s.root, filepath.FromSlash(clean))
}
