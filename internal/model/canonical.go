package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for saving and hashing.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (JCS)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings and object keys are NFC normalized
//  4. Numbers use the ECMAScript shortest form (JCS)
//
// Two documents that differ only in key order or Unicode normalization
// therefore encode to identical bytes.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("canonical: reparse: %w", err)
	}

	normalized, err := json.Marshal(normalizeNFC(raw))
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal normalized: %w", err)
	}

	out, err := jcs.Transform(normalized)
	if err != nil {
		return nil, fmt.Errorf("canonical: transform: %w", err)
	}
	return out, nil
}

// normalizeNFC walks a decoded JSON tree and NFC-normalizes every string
// and object key.
func normalizeNFC(v any) any {
	switch val := v.(type) {
	case string:
		return norm.NFC.String(val)
	case []any:
		for i, elem := range val {
			val[i] = normalizeNFC(elem)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[norm.NFC.String(k)] = normalizeNFC(elem)
		}
		return out
	default:
		return v
	}
}
