package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateResumeSchema(t *testing.T) {
	schema := BuildResumeJSONSchema()

	good := []string{
		`{"skills":[]}`,
		`{"full_name":"John Doe","skills":["Go","SQL"]}`,
		`{"skills":["Go"],"experience":[{"title":"Engineer","company":"Acme","start_date":"2020-01","end_date":"present"}]}`,
		`{"skills":["Go"],"education":[{"institution":"MIT","degree":"BSc","end_year":"2018"}],"confidence":0.9}`,
	}
	for _, doc := range good {
		if err := ValidateJSONAgainstSchema(schema, []byte(doc)); err != nil {
			t.Errorf("expected %s to validate: %v", doc, err)
		}
	}

	bad := []string{
		`{}`,                                  // skills missing
		`{"skills":"Go"}`,                     // skills not an array
		`{"skills":[1,2]}`,                    // non-string skills
		`{"skills":[],"unknown_field":true}`,  // additionalProperties
		`{"skills":[],"experience":[{}]}`,     // experience without title
		`{"skills":[],"confidence":1.5}`,      // out of range
		`{"skills":[],"education":[{"end_year":"2018"}]}`, // education without institution
	}
	for _, doc := range bad {
		if err := ValidateJSONAgainstSchema(schema, []byte(doc)); err == nil {
			t.Errorf("expected %s to be rejected", doc)
		}
	}
}

func TestSanitizeOptionalFields(t *testing.T) {
	in := []byte(`{
		"full_name": "  John Doe ",
		"email": "",
		"phone": null,
		"skills": ["Go", " SQL ", "", 42],
		"experience": [{"title":"Engineer"},{"company":"Acme"}],
		"education": [{"institution":"MIT"},{"degree":"BSc"}],
		"source": "model-added"
	}`)

	out, dropped, err := SanitizeOptionalFields(in)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(dropped) == 0 {
		t.Error("expected dropped fields to be reported")
	}

	if err := ValidateJSONAgainstSchema(BuildResumeJSONSchema(), out); err != nil {
		t.Fatalf("sanitized doc must validate: %v\n%s", err, out)
	}

	var fields ResumeFields
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields.FullName != "John Doe" {
		t.Errorf("full_name = %q, want trimmed", fields.FullName)
	}
	if len(fields.Skills) != 3 {
		t.Errorf("skills = %v, want 3 entries", fields.Skills)
	}
	for _, s := range fields.Skills {
		if strings.TrimSpace(s) == "" {
			t.Errorf("empty skill survived: %v", fields.Skills)
		}
	}
	if len(fields.Experience) != 1 || fields.Experience[0].Title != "Engineer" {
		t.Errorf("experience = %+v, want single titled entry", fields.Experience)
	}
	if len(fields.Education) != 1 || fields.Education[0].Institution != "MIT" {
		t.Errorf("education = %+v, want single institution entry", fields.Education)
	}
	if fields.Email != "" || fields.Phone != "" {
		t.Errorf("empty contact fields must be dropped: %+v", fields)
	}
}
