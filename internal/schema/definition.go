package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Definition renders the artifact's JSON schema for embedding in a stage
// instruction. Limits appear as minItems/maxItems so the model is told the
// same bounds the validator enforces.
func (c Contract) Definition() ([]byte, error) {
	r := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(c.Artifact())
	s.Version = "" // the model needs the shape, not the draft URI
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema %s: marshal: %w", c.Name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema %s: reparse: %w", c.Name, err)
	}
	props, _ := doc["properties"].(map[string]any)
	for _, lim := range c.Limits {
		p, ok := props[lim.Field].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema %s: limit field %q not in schema", c.Name, lim.Field)
		}
		if lim.Min > 0 {
			p["minItems"] = lim.Min
		}
		if lim.Max > 0 {
			p["maxItems"] = lim.Max
		}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema %s: render: %w", c.Name, err)
	}
	return out, nil
}
