package fetcher

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnsupportedExtension is returned when a case document has an extension
// the loader does not understand.
var ErrUnsupportedExtension = eris.New("document: unsupported extension")

// Kind identifies how a document was parsed.
type Kind string

const (
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// Document is a loaded case document: either a parsed JSON value (with the
// raw bytes kept for path queries) or free text.
type Document struct {
	Path  string
	Kind  Kind
	Raw   []byte
	Value any
	Text  string
}

// IsJSON reports whether the document holds parsed JSON.
func (d *Document) IsJSON() bool { return d != nil && d.Kind == KindJSON }

var textExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".md":   true,
}

// LoadDocument reads a case document from disk, choosing JSON or text
// parsing by extension.
func LoadDocument(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && !textExtensions[ext] {
		return nil, eris.Wrapf(ErrUnsupportedExtension, "document: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "document: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	doc, err := ParseDocument(path, f)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// ParseDocument parses r as a case document, using name's extension to pick
// the format. It is used for uploads that never touch the filesystem.
func ParseDocument(name string, r io.Reader) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "document: read %s", name)
	}

	switch {
	case ext == ".json":
		doc, err := ParseJSON(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "document: %s", name)
		}
		doc.Path = name
		return doc, nil
	case textExtensions[ext]:
		doc := FromText(string(raw))
		doc.Path = name
		return doc, nil
	default:
		return nil, eris.Wrapf(ErrUnsupportedExtension, "document: %s", name)
	}
}

// ParseJSON parses raw JSON into a Document. Numbers are kept as json.Number
// so long account and party keys survive intact.
func ParseJSON(raw []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, eris.Wrap(err, "json: decode document")
	}
	return &Document{Kind: KindJSON, Raw: raw, Value: v}, nil
}

// FromValue wraps an already decoded value, such as a case selected from the
// case repository, as a JSON document.
func FromValue(v any) (*Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "json: encode document")
	}
	return ParseJSON(raw)
}

// FromText wraps free text as a document.
func FromText(text string) *Document {
	return &Document{Kind: KindText, Raw: []byte(text), Text: text}
}
