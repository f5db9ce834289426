// Package contenthash computes order-independent digests over scoring inputs
// and decides whether a stored report is still valid for them.
package contenthash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fadilmartias/career-intel/internal/domain"
)

const inlineDataKey = "inline_data_base64"

// Hash returns the hex SHA-256 of the canonical form of ctx. Inline binary in
// the career card is replaced by a sentinel first.
func Hash(ctx domain.ScoringContext) (string, error) {
	canonical, err := Canonicalize(domain.ScoringContext{
		CareerCardData:     HashSafe(ctx.CareerCardData),
		CompanyDescription: ctx.CompanyDescription,
		RoleDescription:    ctx.RoleDescription,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// IsValid reports whether existing can be served for hash without rescoring.
func IsValid(existing *domain.StoredReport, force bool, hash string) bool {
	if existing == nil || force {
		return false
	}
	return existing.InputHash != "" && existing.InputHash == hash
}

// HashSafe returns a copy of data with every inline binary payload replaced
// by domain.InlineBinarySentinel. Two uploads that differ only in bytes but
// share metadata and extracted text therefore hash the same.
func HashSafe(data any) any {
	return MapInline(data, func(InlinePayload) *string {
		sentinel := domain.InlineBinarySentinel
		return &sentinel
	})
}

// InlinePayload is one inline binary value found in a career card, with the
// filename and mime recorded next to it.
type InlinePayload struct {
	Data     string
	Filename string
	Mime     string
}

// MapInline returns a copy of data in which every inline_data_base64 value is
// replaced by fn's result; nil becomes JSON null. data is not modified.
func MapInline(data any, fn func(InlinePayload) *string) any {
	switch v := data.(type) {
	case *domain.CareerCardDocument:
		if v == nil {
			return v
		}
		return mapDocument(*v, fn)
	case domain.CareerCardDocument:
		return mapDocument(v, fn)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if payload, isString := value.(string); isString && key == inlineDataKey {
				filename, _ := v["filename"].(string)
				mime, _ := v["mime"].(string)
				if repl := fn(InlinePayload{Data: payload, Filename: filename, Mime: mime}); repl != nil {
					out[key] = *repl
				} else {
					out[key] = nil
				}
				continue
			}
			out[key] = MapInline(value, fn)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = MapInline(value, fn)
		}
		return out
	default:
		return data
	}
}

func mapDocument(doc domain.CareerCardDocument, fn func(InlinePayload) *string) *domain.CareerCardDocument {
	if doc.InlineDataBase64 != nil {
		doc.InlineDataBase64 = fn(InlinePayload{Data: *doc.InlineDataBase64, Filename: doc.Filename, Mime: doc.Mime})
	}
	return &doc
}

// Canonicalize renders v as JSON with object keys sorted at every level.
// Numbers are normalised through float64 so 1, 1.0 and 1e0 serialise alike.
func Canonicalize(v any) (string, error) {
	raw, err := marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode hash input: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", fmt.Errorf("decode hash input: %w", err)
	}

	var sb strings.Builder
	if err := writeCanonical(&sb, generic); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCanonical(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeScalar(sb, k); err != nil {
				return err
			}
			sb.WriteByte(':')
			if err := writeCanonical(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeCanonical(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("encode number %q: %w", val, err)
		}
		return writeScalar(sb, f)
	default:
		return writeScalar(sb, val)
	}
	return nil
}

func writeScalar(sb *strings.Builder, v any) error {
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("encode hash input: %w", err)
	}
	sb.Write(raw)
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
