package dict

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"stenotape/internal/suggest"
)

// dictSchema shapes a JSON dictionary: an object mapping outlines to
// definition strings, with no empty strokes inside an outline.
var dictSchema = jsonschema.MustCompileString("stenotape/dictionary.schema.json", `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"propertyNames": {"pattern": "^[^/]+(/[^/]+)*$"},
	"additionalProperties": {"type": "string"}
}`)

func loadJSON(path string) (map[string][]suggest.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := dictSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	byText := make(map[string][]suggest.Candidate)
	for outline, def := range doc.(map[string]any) {
		strokes := strings.Split(outline, "/")
		text := def.(string)
		byText[text] = append(byText[text], suggest.Candidate{
			Outline: strokes,
			Strokes: len(strokes),
		})
	}
	return byText, nil
}
