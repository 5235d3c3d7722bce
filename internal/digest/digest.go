package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/elfpeek/internal/report"
)

// DomainReport separates report digests from any other hash this tool
// may compute. The version suffix allows the encoding to change.
const DomainReport = "elfpeek/report/v1"

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalJSON encodes any JSON-marshalable value canonically. v is first
// passed through encoding/json so struct tags decide the field names.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonical json: decode: %w", err)
	}

	canonical, err := MarshalCanonical(dropNulls(generic))
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	return canonical, nil
}

// Of returns the domain-separated digest of v's canonical JSON form.
func Of(domain string, v any) (string, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ReportDigest identifies r by content. Reports built from identical
// bytes with identical section selections share a digest.
func ReportDigest(r *report.Report) (string, error) {
	return Of(DomainReport, r)
}

// dropNulls removes null object members and array elements. Go's encoder
// produces them for nil slices and pointers, and canonical JSON forbids
// them.
func dropNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			if elem == nil {
				delete(val, k)
				continue
			}
			val[k] = dropNulls(elem)
		}
		return val
	case []any:
		out := val[:0]
		for _, elem := range val {
			if elem != nil {
				out = append(out, dropNulls(elem))
			}
		}
		return out
	default:
		return v
	}
}
