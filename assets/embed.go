package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed default_words.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// DefaultWords is the small built-in dictionary used when no file is given.
func DefaultWords() ([]string, error) {
	return readLines("default_words.txt")
}

// Migrations exposes the embedded sql/ directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
