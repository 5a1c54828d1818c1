/*
Package idempotency implements the idempotency guard (C5, spec.md §4.8):
request-hash computation over canonical JSON, and the lookup/execute/
persist cycle every mutating command runs through.

Canonicalisation follows spec.md §9 exactly: UTF-8, object keys sorted
lexicographically, null-equivalent absent fields dropped — matching the
original Python service's `json.dumps(data.model_dump(mode="json"),
sort_keys=True)` followed by SHA-256. Go's encoding/json already omits
fields tagged `omitempty` that are zero-valued and always emits object
keys in struct-declaration order, not sorted order, so Hash re-marshals
through a generic map to force key sorting before hashing.
*/
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Hash computes the canonical-JSON SHA-256 hash of v (spec.md §4.8,
// §9 "Dynamic hash canonicalisation").
func Hash(v any) (string, error) {
	// Round-trip through json.Marshal -> map[string]any -> canonical
	// encoder so that nested object keys are sorted, not just the
	// top level.
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}

	canonical, err := canonicalMarshal(generic)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalMarshal re-serialises a decoded JSON value with object keys
// sorted lexicographically and null object members removed at every
// level. Null array elements are kept, since their position is content.
func canonicalMarshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf := []byte{'{'}
		first := true
		for _, k := range keys {
			// Null members are dropped, so an explicit null and an
			// absent field hash the same.
			if val[k] == nil {
				continue
			}
			if !first {
				buf = append(buf, ',')
			}
			first = false
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyJSON...)
			buf = append(buf, ':')

			valJSON, err := canonicalMarshal(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, valJSON...)
		}
		buf = append(buf, '}')
		return buf, nil

	case []any:
		buf := []byte{'['}
		for i, item := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			itemJSON, err := canonicalMarshal(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, itemJSON...)
		}
		buf = append(buf, ']')
		return buf, nil

	default:
		return json.Marshal(val)
	}
}
