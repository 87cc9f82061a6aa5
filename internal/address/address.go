// Package address splits a file path into directory, stem and suffix so that
// numbered sibling paths (stem.N.suffix) can be derived without string surgery.
package address

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path lacks a parent, a stem or an extension.
var ErrInvalidPath = errors.New("invalid path")

// Address is an immutable directory/stem/suffix triple.
type Address struct {
	dir    string
	stem   string
	suffix string
}

// New builds an Address from its parts. The suffix is given without the dot.
func New(dir, stem, suffix string) (Address, error) {
	if dir == "" || stem == "" || suffix == "" {
		return Address{}, fmt.Errorf("%w: dir=%q stem=%q suffix=%q", ErrInvalidPath, dir, stem, suffix)
	}
	if strings.ContainsRune(stem, filepath.Separator) || strings.ContainsRune(suffix, filepath.Separator) {
		return Address{}, fmt.Errorf("%w: separator in stem or suffix", ErrInvalidPath)
	}
	if strings.Contains(suffix, ".") {
		return Address{}, fmt.Errorf("%w: suffix %q contains a dot", ErrInvalidPath, suffix)
	}
	return Address{dir: filepath.Clean(dir), stem: stem, suffix: suffix}, nil
}

// Derive decomposes path. "/var/log/app.log" becomes {"/var/log", "app", "log"}.
func Derive(path string) (Address, error) {
	if path == "" {
		return Address{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	clean := filepath.Clean(path)
	base := filepath.Base(clean)
	if base == string(filepath.Separator) || base == "." || base == ".." {
		return Address{}, fmt.Errorf("%w: %q has no file name", ErrInvalidPath, path)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	suffix := strings.TrimPrefix(ext, ".")
	if stem == "" || suffix == "" {
		return Address{}, fmt.Errorf("%w: %q needs a stem and an extension", ErrInvalidPath, path)
	}

	return New(filepath.Dir(clean), stem, suffix)
}

// ParseBackup reverses BackupPath: "dir/app.3.log" gives {dir, app, log} and 3.
func ParseBackup(path string) (Address, int, error) {
	a, err := Derive(path)
	if err != nil {
		return Address{}, 0, err
	}

	i := strings.LastIndex(a.stem, ".")
	if i <= 0 {
		return Address{}, 0, fmt.Errorf("%w: %q has no backup index", ErrInvalidPath, path)
	}
	n, err := strconv.Atoi(a.stem[i+1:])
	if err != nil || n < 1 {
		return Address{}, 0, fmt.Errorf("%w: %q has no backup index", ErrInvalidPath, path)
	}

	a.stem = a.stem[:i]
	return a, n, nil
}

func (a Address) Dir() string    { return a.dir }
func (a Address) Stem() string   { return a.stem }
func (a Address) Suffix() string { return a.suffix }

// Path returns dir/stem.suffix.
func (a Address) Path() string {
	return filepath.Join(a.dir, a.stem+"."+a.suffix)
}

// BackupPath returns dir/stem.n.suffix. n must be at least 1.
func (a Address) BackupPath(n int) string {
	if n < 1 {
		panic(fmt.Sprintf("address: backup index %d out of range", n))
	}
	return filepath.Join(a.dir, fmt.Sprintf("%s.%d.%s", a.stem, n, a.suffix))
}

func (a Address) String() string { return a.Path() }
