// Package storage reads and writes corpus files. Writes go to a temporary file in the target
// directory first and are renamed into place, so a reader never sees a half written corpus.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Davincible/checkrev/pkg/codes"
)

const FilePerm = 0644

type CorpusFile struct {
	filepath string
}

func NewCorpusFile(filepath string) *CorpusFile {
	return &CorpusFile{
		filepath: filepath,
	}
}

func (s *CorpusFile) Path() string {
	return s.filepath
}

// Save writes c in the code line format, with the count header when header is set.
func (s *CorpusFile) Save(c *codes.Corpus, header bool) error {
	var buf bytes.Buffer
	if err := codes.Write(&buf, c, header); err != nil {
		return fmt.Errorf("failed to format corpus: %w", err)
	}
	return s.WriteAtomic(buf.Bytes())
}

// WriteAtomic replaces the file with data.
func (s *CorpusFile) WriteAtomic(data []byte) error {
	dir := filepath.Dir(s.filepath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.filepath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, FilePerm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.filepath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Load parses the file.
func (s *CorpusFile) Load(opts codes.ParseOptions) (*codes.Corpus, error) {
	f, err := os.Open(s.filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	c, err := codes.Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.filepath, err)
	}
	return c, nil
}

// Exists reports whether the file is present.
func (s *CorpusFile) Exists() bool {
	_, err := os.Stat(s.filepath)
	return err == nil
}
