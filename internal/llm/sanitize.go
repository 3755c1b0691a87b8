package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

var allowedKeys = map[string]struct{}{
	"full_name": {}, "email": {}, "phone": {}, "location": {}, "headline": {},
	"summary": {}, "skills": {}, "experience": {}, "education": {},
	"languages": {}, "confidence": {},
}

// SanitizeOptionalFields removes or normalizes optional fields that don't
// meet our stricter schema, so the overall document can still validate. We
// only touch OPTIONALS; a missing or broken skills array is left for the
// validator to reject.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string

	// unknown keys violate additionalProperties:false, so strip them first
	for k := range m {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// drop null / "" optional scalars
	for _, k := range []string{"full_name", "email", "phone", "location", "headline", "summary"} {
		switch v := m[k].(type) {
		case nil:
			if _, present := m[k]; present {
				delete(m, k)
				dropped = append(dropped, k+"(null)")
			}
		case string:
			if strings.TrimSpace(v) == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = strings.TrimSpace(v)
			}
		}
	}

	// string lists: keep non-empty strings, coerce scalars, drop the rest
	for _, k := range []string{"skills", "languages"} {
		arr, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			switch t := item.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					out = append(out, s)
				} else {
					dropped = append(dropped, k+"(empty item)")
				}
			case float64:
				out = append(out, fmt.Sprintf("%v", t))
				dropped = append(dropped, k+"(numeric item)")
			default:
				dropped = append(dropped, k+"(bad item)")
			}
		}
		m[k] = out
	}

	// drop experience/education entries missing their required key
	dropIncomplete := func(key, required string) {
		arr, ok := m[key].([]any)
		if !ok {
			return
		}
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				dropped = append(dropped, key+"(bad item)")
				continue
			}
			if s, ok := obj[required].(string); !ok || strings.TrimSpace(s) == "" {
				dropped = append(dropped, key+"(missing "+required+")")
				continue
			}
			out = append(out, obj)
		}
		m[key] = out
	}
	dropIncomplete("experience", "title")
	dropIncomplete("education", "institution")

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
