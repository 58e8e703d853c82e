package agent

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// compareBatchSchema is the minimum shape a /compare-batch reply must have.
// Extracted sub-documents are accepted as whatever objects the agent sends.
const compareBatchSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["results", "processing_time_ms"],
  "properties": {
    "processing_time_ms": {"type": "integer", "minimum": 0},
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["resume_id", "match_score"],
        "properties": {
          "resume_id": {"type": "string", "minLength": 1},
          "match_score": {"type": "number", "minimum": 0, "maximum": 100},
          "fit_category": {"type": "string"},
          "selection_reason": {"type": "string"},
          "jd_extracted": {"type": "object"},
          "resume_extracted": {"type": "object"},
          "match_breakdown": {"type": "object"},
          "confidence_score": {"type": ["number", "null"]}
        }
      }
    }
  }
}`

var responseSchema = mustCompile(compareBatchSchema)

func mustCompile(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("agent: invalid response schema: %v", err))
	}
	return schema
}

// validateResponse checks body against the reply schema and reports every
// violation in one error.
func validateResponse(body []byte) error {
	result, err := responseSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("undecodable response: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
}
