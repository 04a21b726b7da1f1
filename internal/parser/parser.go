package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
	"golang.org/x/net/html"
)

// ErrNotWellFormed marks a document that failed strict XML parsing.
var ErrNotWellFormed = errors.New("not well-formed")

// SupportedExtensions lists file extensions this tool can check.
var SupportedExtensions = map[string]bool{
	".svg": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Load reads and parses the document at path.
func Load(path string) (*doctree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a document and builds both parse paths. Only read errors are
// returned; a strict-parse failure is recorded on doc.ParseErr so the caller
// can report it as a finding.
func Parse(r io.Reader, path string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := doctree.NewDocument(path, string(data))

	root, err := checkWellFormed(data)
	if err != nil {
		doc.ParseErr = fmt.Errorf("%w: %v", ErrNotWellFormed, err)
		return doc, nil
	}
	doc.Root = root

	tree, err := html.Parse(bytes.NewReader(data))
	if err == nil {
		if svg := findSVG(tree); svg != nil {
			doc.Tree = svg
		} else {
			doc.Tree = tree
		}
	}
	return doc, nil
}
