package api

import (
	"sort"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/xeipuuv/gojsonschema"
)

const taskSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "title": { "type": "string" },
    "description": { "type": "string" },
    "priority": { "type": "string", "enum": ["Low", "Med", "High"] },
    "status": { "type": "string", "enum": ["Backlog", "Planned", "In Progress", "Blocked", "Review", "Done"] },
    "tags": { "type": "array", "items": { "type": "string" } },
    "agent": { "type": "string" },
    "blockReason": { "type": "string" }
  }
}`

// taskSchema checks field types and enums of create and patch bodies.
var taskSchema = mustSchema(taskSchemaJSON)

type bodySchema struct {
	schema *gojsonschema.Schema
}

func mustSchema(src string) *bodySchema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return &bodySchema{schema: schema}
}

// Validate reports the offending fields as a board validation error.
func (s *bodySchema) Validate(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &board.ValidationError{Reason: "invalid JSON body"}
	}
	if result.Valid() {
		return nil
	}

	seen := map[string]bool{}
	var fields []string
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			field = "body"
		}
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return &board.ValidationError{Fields: fields, Reason: "invalid field values"}
}
