// Package storage provides read/write access to source files under a fixed
// root, preserving each file's original encoding. Paths resolve relative to
// the root and may not escape it.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies the on-disk text encoding of one file.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
)

// String names the encoding for reports and logs.
func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8-bom"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

// FS is a root-locked file store. All operations resolve against the root;
// traversal outside it is rejected.
type FS struct {
	root string
}

// New locks the store to the given directory. The root is resolved to an
// absolute, symlink-free path so containment checks compare real locations.
func New(root string) (*FS, error) {
	if root == "" {
		return nil, errors.New("storage: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("storage: root is not a directory")
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *FS) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

func (s *FS) resolve(userPath string) (string, error) {
	if s == nil {
		return "", errors.New("storage: filesystem not configured")
	}
	if strings.TrimSpace(userPath) == "" {
		return "", errors.New("storage: empty path")
	}
	clean := filepath.Clean(userPath)
	joined := clean
	if !filepath.IsAbs(clean) {
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("storage: path traversal not allowed: %q", userPath)
		}
		joined = filepath.Join(s.root, clean)
	}
	resolved, err := resolveSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !underRoot(resolved, s.root) {
		return "", fmt.Errorf("storage: path %q outside root", userPath)
	}
	return resolved, nil
}

// resolveSymlinks evaluates symlinks on the longest existing prefix of the
// path, keeping the non-existent tail verbatim so new files can still be
// created. A dangling symlink is an error: writing through it would create
// the link target, which containment never inspected.
func resolveSymlinks(p string) (string, error) {
	suffix := ""
	for cur := p; ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		if info, lerr := os.Lstat(cur); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("storage: broken symlink %q", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}

// underRoot reports whether path equals root or sits beneath it.
func underRoot(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}

// Exists reports whether a file exists under the root.
func (s *FS) Exists(path string) bool {
	p, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Stat returns file metadata.
func (s *FS) Stat(path string) (os.FileInfo, error) {
	p, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

// ReadDir lists entries of a directory under the root.
func (s *FS) ReadDir(path string) ([]os.DirEntry, error) {
	p, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(p)
}

// ReadText reads a file and decodes it to UTF-8 text, reporting the
// encoding found so a later write can reproduce it.
func (s *FS) ReadText(path string) (string, Encoding, error) {
	p, err := s.resolve(path)
	if err != nil {
		return "", UTF8, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return "", UTF8, err
	}
	return DecodeText(raw)
}

// WriteText encodes text back to the given encoding, BOM included where the
// original carried one, and writes it. Parent directories are created.
func (s *FS) WriteText(path, text string, enc Encoding) error {
	p, err := s.resolve(path)
	if err != nil {
		return err
	}
	raw, err := EncodeText(text, enc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, raw, 0o644)
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText sniffs the BOM and decodes the payload to a UTF-8 string.
func DecodeText(raw []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		text, _, err := transform.Bytes(dec, raw[len(bomUTF16LE):])
		if err != nil {
			return "", UTF16LE, err
		}
		return string(text), UTF16LE, nil
	case bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		text, _, err := transform.Bytes(dec, raw[len(bomUTF16BE):])
		if err != nil {
			return "", UTF16BE, err
		}
		return string(text), UTF16BE, nil
	default:
		return string(raw), UTF8, nil
	}
}

// EncodeText is the inverse of DecodeText for a known encoding.
func EncodeText(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8:
		return []byte(text), nil
	case UTF8BOM:
		return append(append([]byte(nil), bomUTF8...), text...), nil
	case UTF16LE:
		e := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
		payload, _, err := transform.Bytes(e, []byte(text))
		if err != nil {
			return nil, err
		}
		return append(append([]byte(nil), bomUTF16LE...), payload...), nil
	case UTF16BE:
		e := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
		payload, _, err := transform.Bytes(e, []byte(text))
		if err != nil {
			return nil, err
		}
		return append(append([]byte(nil), bomUTF16BE...), payload...), nil
	default:
		return nil, fmt.Errorf("storage: unknown encoding %d", int(enc))
	}
}
