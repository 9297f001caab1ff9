// Package golden resolves scenario identifiers to golden reference blobs.
//
// A golden blob is a raw, headerless dump of the expected decoder output named
// "<identifier>.bin" under the store root. A zstd-compressed "<identifier>.bin.zst"
// is accepted in its place.
package golden

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	// Ext is appended to an identifier to form the blob name
	Ext = ".bin"
	// CompressedExt is appended to the blob name of zstd-compressed references
	CompressedExt = ".zst"
)

var (
	// ErrReferenceNotFound is returned when no blob exists for an identifier
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrInvalidIdentifier is returned for identifiers that would resolve outside the store
	ErrInvalidIdentifier = errors.New("invalid reference identifier")
)

// Name returns the blob name of an identifier
func Name(id string) string {
	return id + Ext
}

// Store reads golden blobs from a directory tree
type Store struct {
	root string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store directory
func (s *Store) Root() string {
	return s.root
}

// Path returns the file path of the uncompressed blob for id
func (s *Store) Path(id string) (string, error) {
	if id == "" || filepath.IsAbs(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	clean := filepath.Clean(filepath.FromSlash(id))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return filepath.Join(s.root, Name(clean)), nil
}

// Reference is an open golden blob. Size is known before any content is read.
type Reference struct {
	ID   string
	Path string
	Size int64

	rc io.ReadCloser
}

// Read reads blob content
func (r *Reference) Read(p []byte) (int, error) {
	return r.rc.Read(p)
}

// Close releases the underlying file
func (r *Reference) Close() error {
	return r.rc.Close()
}

// Open opens the blob for id. The caller must Close it.
func (s *Store) Open(id string) (*Reference, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err == nil {
		st, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("stat reference %s: %w", id, err)
		}
		if !st.IsDir() {
			return &Reference{ID: id, Path: path, Size: st.Size(), rc: f}, nil
		}
		// a directory is not a blob
		_ = f.Close()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open reference %s: %w", id, err)
	}

	data, err := s.loadCompressed(id, path+CompressedExt)
	if err != nil {
		return nil, err
	}
	return &Reference{
		ID:   id,
		Path: path + CompressedExt,
		Size: int64(len(data)),
		rc:   io.NopCloser(bytes.NewReader(data)),
	}, nil
}

// Load reads the whole blob for id
func (s *Store) Load(id string) ([]byte, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) && !isDir(path) {
		return nil, fmt.Errorf("read reference %s: %w", id, err)
	}
	return s.loadCompressed(id, path+CompressedExt)
}

// Exists reports whether a blob, plain or compressed, exists for id
func (s *Store) Exists(id string) bool {
	path, err := s.Path(id)
	if err != nil {
		return false
	}
	for _, p := range []string{path, path + CompressedExt} {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}

func (s *Store) loadCompressed(id, path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && isDir(path)) {
		if f != nil {
			_ = f.Close()
		}
		return nil, fmt.Errorf("%w: %s (looked for %s)", ErrReferenceNotFound, id, Name(id))
	}
	if err != nil {
		return nil, fmt.Errorf("open reference %s: %w", id, err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open zstd reference %s: %w", id, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress reference %s: %w", id, err)
	}
	return data, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
