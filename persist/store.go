// Package persist stores scope-filtered model state in aggregate
// documents on disk.
//
// A document maps opaque group identifiers to flat field-name/value
// objects. Two managers exist per application: a settings manager
// (fields tagged field.ScopeSetting, global, survives every session)
// and a workspace manager (fields tagged field.ScopeWorkspace, tied to
// one saved workspace snapshot). The mechanics are identical; only the
// scope predicate and the backing file differ.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk aggregate: group id -> field name -> stored
// value.
type Document map[string]map[string]any

// fileStore reads and writes a document at a fixed path, choosing the
// encoding by file extension. Writes are whole-file and atomic
// (write to a temp file, then rename) so a failed write never leaves
// a truncated document behind.
type fileStore struct {
	path string
}

// read loads the document from disk. A missing file is an empty
// document, not an error. Parse errors are returned so the caller can
// log them; the caller is expected to degrade to an empty document.
func (s *fileStore) read() (Document, error) {
	return readDocument(s.path)
}

// write replaces the document on disk.
func (s *fileStore) write(doc Document) error {
	return writeDocument(s.path, doc)
}

// readDocument loads a document from an arbitrary path.
func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	doc := Document{}
	if err := decodeDocument(path, data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// writeDocument writes a document to an arbitrary path atomically.
func writeDocument(path string, doc Document) error {
	data, err := encodeDocument(path, doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing store %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing store %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store %s: %w", path, err)
	}
	return nil
}

// decodeDocument parses data in the format implied by the path's
// extension. JSON is the default.
func decodeDocument(path string, data []byte, doc *Document) error {
	switch formatOf(path) {
	case formatTOML:
		if err := toml.Unmarshal(data, doc); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, doc); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	}
	return nil
}

// encodeDocument serializes a document in the format implied by the
// path's extension.
func encodeDocument(path string, doc Document) ([]byte, error) {
	switch formatOf(path) {
	case formatTOML:
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", path, err)
		}
		return data, nil
	case formatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", path, err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", path, err)
		}
		return append(data, '\n'), nil
	}
}

type format uint8

const (
	formatJSON format = iota
	formatTOML
	formatYAML
)

// formatOf maps a file extension to a document format. Unrecognized
// extensions are treated as JSON, the native store format.
func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}
