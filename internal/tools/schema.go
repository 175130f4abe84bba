package tools

import (
	"github.com/invopop/jsonschema"
)

// reflectInputSchema reflects the argument struct A into an InputSchema. Fields are
// required only when tagged `jsonschema:"required"`; unknown arguments are tolerated.
func reflectInputSchema[A any]() InputSchema {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(new(A))

	out := InputSchema{Type: "object", Properties: map[string]Property{}}
	if s == nil {
		return out
	}
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			out.Properties[el.Key] = toProperty(el.Value)
		}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}

func toProperty(s *jsonschema.Schema) Property {
	if s == nil {
		return Property{}
	}
	p := Property{
		Type:        s.Type,
		Description: s.Description,
		Default:     s.Default,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}
	if s.Type == "array" && s.Items != nil {
		item := toProperty(s.Items)
		p.Items = &item
	}
	return p
}
