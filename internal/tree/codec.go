// internal/tree/codec.go
//
// Tree files: a gob-encoded Record inside a gzip stream.

package tree

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Encode writes t to w.
func Encode(w io.Writer, t *Tree) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(zw).Encode(ToRecord(t)); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return zw.Close()
}

// Decode reads a tree from r and validates it.
func Decode(r io.Reader) (*Tree, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTreeFormat, err)
	}
	defer zr.Close()

	var rec Record
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: gob decode: %w", ErrInvalidTreeFormat, err)
	}
	return FromRecord(&rec)
}

// SaveFile writes t to path, creating parent directories. The file is
// written next to path first and renamed into place.
func SaveFile(path string, t *Tree) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, t); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile reads and validates the tree stored at path.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
