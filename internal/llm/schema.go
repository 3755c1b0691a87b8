package llm

// BuildResumeJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured-output constraint
// and also use it locally to validate the response.
func BuildResumeJSONSchema() map[string]any {
	experienceItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":      map[string]any{"type": "string", "minLength": 1},
			"company":    map[string]any{"type": "string"},
			"start_date": map[string]any{"type": "string", "pattern": `^\d{4}(-\d{2})?$`},
			"end_date":   map[string]any{"type": "string", "pattern": `^(\d{4}(-\d{2})?|present)$`},
			"summary":    map[string]any{"type": "string"},
		},
		"required": []string{"title"},
	}

	educationItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"institution": map[string]any{"type": "string", "minLength": 1},
			"degree":      map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"end_year":    map[string]any{"type": "string", "pattern": `^\d{4}$`},
		},
		"required": []string{"institution"},
	}

	props := map[string]any{
		"full_name": map[string]any{"type": "string"},
		"email":     map[string]any{"type": "string"},
		"phone":     map[string]any{"type": "string"},
		"location":  map[string]any{"type": "string"},
		"headline":  map[string]any{"type": "string"},
		"summary":   map[string]any{"type": "string"},
		"skills": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		"experience": map[string]any{"type": "array", "items": experienceItem},
		"education":  map[string]any{"type": "array", "items": educationItem},
		"languages": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"skills"},
	}
}
