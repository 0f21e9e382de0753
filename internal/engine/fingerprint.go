package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// queueDomain is the domain prefix for queue fingerprints. The version
// suffix enables future algorithm migration.
const queueDomain = "hqd/queue/v1"

// Fingerprint returns the content-addressed identity of the queue: a
// domain-separated SHA-256 over the canonical JSON encoding of the app type
// and the ordered handler ids. Equal queues produce equal fingerprints across
// runs and platforms.
func (q *OrderedQueue) Fingerprint() (string, error) {
	entries := make([]any, 0, len(q.Entries))
	for _, e := range q.Entries {
		entry := map[string]any{"id": e.Handler.ID}
		if len(e.Nested) > 0 {
			nested := make([]any, len(e.Nested))
			for i, n := range e.Nested {
				nested[i] = n.ID
			}
			entry["nested"] = nested
		}
		entries = append(entries, entry)
	}

	data, err := marshalCanonical(map[string]any{
		"app_type": string(q.AppType),
		"handlers": entries,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprinting queue: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(queueDomain))
	h.Write([]byte{0x00}) // null separator between domain and payload
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// marshalCanonical produces RFC 8785-style canonical JSON: object keys
// sorted by UTF-16 code units, NFC-normalized strings, no HTML escaping, no
// floats, no null. Only the shapes the fingerprint payload uses are
// supported.
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sortUTF16(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString encodes an NFC-normalized string without HTML
// escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	// json.Encoder appends a trailing newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// sortUTF16 sorts keys by UTF-16 code units, as RFC 8785 requires. Differs
// from byte order only for strings containing supplementary-plane runes.
func sortUTF16(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a := utf16.Encode([]rune(keys[i]))
		b := utf16.Encode([]rune(keys[j]))
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
