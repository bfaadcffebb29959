package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// suiteSchema is the structural contract for generated suites. Anything the
// schema rejects is ErrGenerationMalformed territory.
const suiteSchema = `{
  "type": "object",
  "required": ["tasks", "quality_prompts"],
  "properties": {
    "skill_claims": {
      "type": "array",
      "items": {"type": "string"}
    },
    "tasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["difficulty", "prompt", "expected_output_type", "success_criteria"],
        "properties": {
          "id": {"type": "string"},
          "difficulty": {"enum": ["easy", "medium", "hard"]},
          "prompt": {"type": "string", "minLength": 1},
          "expected_output_type": {"enum": ["file", "code", "text"]},
          "file_ext": {"type": "string"},
          "tests_claim": {"type": "string"},
          "success_criteria": {
            "type": "object",
            "minProperties": 1,
            "additionalProperties": {
              "type": ["boolean", "number", "string"]
            }
          }
        }
      }
    },
    "quality_prompts": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "selectivity_tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["prompt"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "avoid_marker": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSuiteSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(suiteSchema))
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("suite-schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("suite-schema.json")
	})
	return compiledSchema, schemaErr
}

// validatePayload checks a decoded JSON value against the suite schema and
// returns human-readable failures.
func validatePayload(value any) []string {
	schema, err := compiledSuiteSchema()
	if err != nil {
		// the schema is a compile-time constant; failing to compile it is a
		// programming error, surfaced the loud way
		panic(fmt.Sprintf("suite schema does not compile: %v", err))
	}
	if err := schema.Validate(value); err != nil {
		return []string{err.Error()}
	}
	return nil
}

// extractJSON pulls the first top-level JSON object out of capability text.
// Providers wrap JSON in prose or fences often enough that a strict
// json.Unmarshal of the whole response would reject good payloads.
func extractJSON(text string) (any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var value any
	if err := json.Unmarshal([]byte(text[start:end+1]), &value); err != nil {
		return nil, fmt.Errorf("response JSON does not parse: %v", err)
	}
	return value, nil
}

type generatedTask struct {
	ID                 string         `mapstructure:"id"`
	Difficulty         string         `mapstructure:"difficulty"`
	Prompt             string         `mapstructure:"prompt"`
	ExpectedOutputType string         `mapstructure:"expected_output_type"`
	FileExt            string         `mapstructure:"file_ext"`
	TestsClaim         string         `mapstructure:"tests_claim"`
	SuccessCriteria    map[string]any `mapstructure:"success_criteria"`
}

type generatedSelectivity struct {
	Prompt      string `mapstructure:"prompt"`
	AvoidMarker string `mapstructure:"avoid_marker"`
}

type generatedPayload struct {
	SkillClaims      []string               `mapstructure:"skill_claims"`
	Tasks            []generatedTask        `mapstructure:"tasks"`
	QualityPrompts   []string               `mapstructure:"quality_prompts"`
	SelectivityTests []generatedSelectivity `mapstructure:"selectivity_tests"`
}

// decodePayload maps the schema-validated JSON value onto typed structs.
func decodePayload(value any) (*generatedPayload, error) {
	var payload generatedPayload
	if err := mapstructure.Decode(value, &payload); err != nil {
		return nil, fmt.Errorf("decoding generated payload: %v", err)
	}
	return &payload, nil
}
