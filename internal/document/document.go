// Package document encodes and decodes persisted page documents:
//
//	{ "elements": {...}, "rootElementIds": [...], "instances": {...} }
//
// Encoding is canonical (RFC 8785) so equal documents produce equal bytes
// and equal content hashes. Decoding checks the JSON Schema, then tree
// integrity and instance ownership. A document that fails any check is
// rejected with a CORRUPT error; nothing is ever repaired.
package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/canvas/internal/model"
)

//go:embed page.schema.json
var pageSchemaJSON string

const pageSchemaURL = "https://canvas.schemas.local/page.schema.json"

var pageSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(pageSchemaURL, strings.NewReader(pageSchemaJSON)); err != nil {
		return nil, fmt.Errorf("page schema load failed: %w", err)
	}
	schema, err := c.Compile(pageSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("page schema compile failed: %w", err)
	}
	return schema, nil
})

// Encode returns the canonical JSON encoding of doc.
func Encode(doc model.Document) ([]byte, error) {
	return model.MarshalCanonical(normalize(doc))
}

// EncodeIndent returns the canonical encoding of doc, indented for humans.
// Key order is the canonical order.
func EncodeIndent(doc model.Document) ([]byte, error) {
	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Hash returns the content hash of doc.
func Hash(doc model.Document) (string, error) {
	return model.DocumentHash(normalize(doc))
}

// Decode parses and validates a page document.
func Decode(data []byte) (model.Document, error) {
	const op = "decodeDocument"

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return model.Document{}, model.NewCorrupt(op, fmt.Sprintf("malformed JSON: %v", err))
	}
	if dec.More() {
		return model.Document{}, model.NewCorrupt(op, "trailing data after document")
	}

	schema, err := pageSchema()
	if err != nil {
		return model.Document{}, err
	}
	if err := schema.Validate(raw); err != nil {
		return model.Document{}, model.NewCorrupt(op, fmt.Sprintf("schema: %v", err))
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, model.NewCorrupt(op, err.Error())
	}
	doc = normalize(doc)
	if err := model.ValidateDocument(doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// normalize fills missing top-level collections and drops an empty
// instance table, so that an empty document has one encoding.
func normalize(doc model.Document) model.Document {
	if doc.Elements == nil {
		doc.Elements = make(map[string]*model.Element)
	}
	if doc.RootElementIDs == nil {
		doc.RootElementIDs = []string{}
	}
	if len(doc.Instances) == 0 {
		doc.Instances = nil
	}
	return doc
}
