package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/noveld/internal/util"
)

const (
	MetadataFile = "metadata.json"
	ChaptersFile = "chapters.json"
)

// Store persists the index and content documents as JSON files in one
// directory. Every save overwrites the whole document.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MetadataPath() string {
	return filepath.Join(s.dir, MetadataFile)
}

func (s *Store) ChaptersPath() string {
	return filepath.Join(s.dir, ChaptersFile)
}

// LoadIndex reads the index. A missing file yields an empty index.
func (s *Store) LoadIndex() (*Index, error) {
	ix := New()
	found, err := loadJSON(s.MetadataPath(), ix)
	if err != nil || !found {
		return ix, err
	}

	if ix.Metadata == nil {
		ix.Metadata = map[string]Stub{}
	}
	if ix.Order == nil {
		ix.Order = []string{}
	}

	if err := ix.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.MetadataPath(), err)
	}

	return ix, nil
}

func (s *Store) SaveIndex(ix *Index) error {
	return saveJSON(s.MetadataPath(), ix)
}

// LoadContents reads the content table. A missing file yields an empty
// table.
func (s *Store) LoadContents() (Contents, error) {
	c := Contents{}
	if _, err := loadJSON(s.ChaptersPath(), &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = Contents{}
	}

	return c, nil
}

func (s *Store) SaveContents(c Contents) error {
	return saveJSON(s.ChaptersPath(), c)
}

// State summarizes what a data folder holds.
type State struct {
	Indexed int
	Stored  int
	// Synced is when the index was last written; zero if never.
	Synced time.Time
}

// State loads both documents and reports their sizes.
func (s *Store) State() (State, error) {
	var st State

	ix, err := s.LoadIndex()
	if err != nil {
		return st, err
	}
	c, err := s.LoadContents()
	if err != nil {
		return st, err
	}

	st.Indexed = len(ix.Order)
	st.Stored = len(c)
	if fi, err := os.Stat(s.MetadataPath()); err == nil {
		st.Synced = fi.ModTime()
	}

	return st, nil
}

func loadJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	return true, nil
}

func saveJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return util.WriteFileAtomic(path, buf.Bytes(), 0644)
}
