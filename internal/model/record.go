package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Record is a flat partial record of values keyed by property name.
// Element styles, props patches, variant deltas and overrides are Records.
//
// Inside a patch a nil value means "unset this key". Stored records never
// contain nil values (see Compact).
type Record map[string]Value

// Clone returns a deep copy of the record. A nil record clones to nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// SortedKeys returns keys in lexical order for deterministic iteration.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value stored under key and whether it is present.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Compact returns a copy without nil (unset) entries.
func (r Record) Compact() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if v != nil {
			out[k] = CloneValue(v)
		}
	}
	return out
}

// EqualRecords reports whether two records hold the same keys and values.
// A nil record equals an empty one.
func EqualRecords(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

// Merge shallow-merges layers left to right into a new record.
//
// This is the only merge used for styles, props, variants and overrides:
// later layers win per key, a nil value deletes the key, and composite
// values (List, Object) are replaced wholesale, never merged field by field.
func Merge(layers ...Record) Record {
	out := make(Record)
	for _, layer := range layers {
		for k, v := range layer {
			if v == nil {
				delete(out, k)
				continue
			}
			out[k] = CloneValue(v)
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler for Record.
// JSON null values are kept as nil entries so patches can unset keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		val, err := DecodeValue(v)
		if err != nil {
			return fmt.Errorf("record key %q: %w", k, err)
		}
		out[k] = val
	}
	*r = out
	return nil
}

// RecordFromMap converts a plain map (YAML, CUE or test literals) into a Record.
func RecordFromMap(m map[string]any) (Record, error) {
	if m == nil {
		return nil, nil
	}
	out := make(Record, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("record key %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}
