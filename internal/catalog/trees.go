package catalog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrNotFound         = errors.New("catalog: tree not found")
	ErrChecksumMismatch = errors.New("catalog: tree file does not match its checksum")
)

// Entry describes one built tree file.
type Entry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum"` // hex blake2b-256 of the file
	RootWord   string    `json:"rootWord"`
	WordLength int       `json:"wordLength"`
	Words      int       `json:"words"`
	Dual       bool      `json:"dual"`
	BuiltAt    time.Time `json:"builtAt"`
}

// Catalog records built trees in the trees table.
type Catalog struct{ db *sql.DB }

func New(db *sql.DB) *Catalog { return &Catalog{db: db} }

// Checksum returns the hex blake2b-256 digest of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Put inserts or replaces e.
func (c *Catalog) Put(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trees(name, path, checksum, root_word, word_length, words, dual, built_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		e.Name, e.Path, e.Checksum, e.RootWord, e.WordLength, e.Words, e.Dual, e.BuiltAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Get returns the entry called name.
func (c *Catalog) Get(ctx context.Context, name string) (Entry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT name, path, checksum, root_word, word_length, words, dual, built_at
		FROM trees WHERE name=?`, name)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, err
}

// List returns every entry, most recently built first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, path, checksum, root_word, word_length, words, dual, built_at
		FROM trees ORDER BY built_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Verify recomputes the checksum of the named tree's file.
func (c *Catalog) Verify(ctx context.Context, name string) (Entry, error) {
	e, err := c.Get(ctx, name)
	if err != nil {
		return Entry{}, err
	}
	sum, err := Checksum(e.Path)
	if err != nil {
		return e, err
	}
	if sum != e.Checksum {
		return e, fmt.Errorf("%w: %s", ErrChecksumMismatch, e.Path)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var builtAt string
	if err := s.Scan(&e.Name, &e.Path, &e.Checksum, &e.RootWord, &e.WordLength, &e.Words, &e.Dual, &builtAt); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339, builtAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse built_at %q: %w", builtAt, err)
	}
	e.BuiltAt = t
	return e, nil
}
