package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// checkWellFormed runs a strict token pass over data and returns the root
// element's unprefixed attributes.
func checkWellFormed(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var root map[string]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || root != nil {
			continue
		}
		root = make(map[string]string, len(se.Attr))
		for _, a := range se.Attr {
			if a.Name.Space == "" {
				root[a.Name.Local] = a.Value
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}
