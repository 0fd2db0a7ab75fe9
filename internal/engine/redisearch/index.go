package redisearch

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/scriptorium-dev/quire/internal/domain"
)

// VerifySchema checks the live index (FT.INFO) against the declared schema:
// every content field must be indexed as TEXT with a VECTOR sibling, tags as
// TAG, numerics as NUMERIC. A mismatch means the ingestion collaborator and
// this query layer disagree, which is fatal at load time.
func (e *Engine) VerifySchema(ctx context.Context, s domain.Schema) error {
	cmd := e.store.b().Arbitrary("FT.INFO").Args(s.Index()).Build()
	raw, err := e.store.do(ctx, cmd).ToArray()
	if err != nil {
		return fmt.Errorf("%w: index %q not available: %v", domain.ErrConfiguration, s.Index(), err)
	}

	indexed, err := parseAttributeTypes(raw)
	if err != nil {
		return fmt.Errorf("%w: index %q: %v", domain.ErrConfiguration, s.Index(), err)
	}

	for _, f := range s.Fields() {
		var want string
		switch f.Kind {
		case domain.FieldContent:
			want = "TEXT"
		case domain.FieldTag:
			want = "TAG"
		case domain.FieldNumeric:
			want = "NUMERIC"
		}
		if err := expectAttribute(indexed, f.Name, want, s.Index()); err != nil {
			return err
		}
		if f.VectorField != "" {
			if err := expectAttribute(indexed, f.VectorField, "VECTOR", s.Index()); err != nil {
				return err
			}
		}
	}
	return nil
}

func expectAttribute(indexed map[string]string, name, want, index string) error {
	got, ok := indexed[name]
	if !ok {
		return fmt.Errorf("%w: index %q does not index field %q", domain.ErrConfiguration, index, name)
	}
	if got != want {
		return fmt.Errorf("%w: index %q field %q is %s, schema expects %s",
			domain.ErrConfiguration, index, name, got, want)
	}
	return nil
}

// parseAttributeTypes extracts attribute name -> index type from an FT.INFO
// reply (alternating key/value pairs; "attributes" holds one array per field).
func parseAttributeTypes(raw []rueidis.RedisMessage) (map[string]string, error) {
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil || key != "attributes" {
			continue
		}
		attrs, err := raw[i+1].ToArray()
		if err != nil {
			return nil, fmt.Errorf("malformed attributes reply")
		}
		out := make(map[string]string, len(attrs))
		for _, attr := range attrs {
			pairs, err := attr.ToArray()
			if err != nil {
				continue
			}
			var name, typ string
			for j := 0; j+1 < len(pairs); j += 2 {
				k, err := pairs[j].ToString()
				if err != nil {
					continue
				}
				v, err := pairs[j+1].ToString()
				if err != nil {
					continue
				}
				switch k {
				case "attribute":
					name = v
				case "identifier":
					if name == "" {
						name = v
					}
				case "type":
					typ = v
				}
			}
			if name != "" {
				out[name] = typ
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("no attributes in FT.INFO reply")
}
