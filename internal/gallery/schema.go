package gallery

import (
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const imageArraySchemaURL = "gallery-index.json"

// imageArraySchema describes the array a gallery generator embeds in its
// index page. Only url and url_thumb are required; title and size are read
// when present.
const imageArraySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["url", "url_thumb"],
    "properties": {
      "url": {"type": "string", "minLength": 1},
      "url_thumb": {"type": "string", "minLength": 1},
      "title": {"type": ["string", "null"]},
      "size": {
        "type": "object",
        "properties": {
          "w": {"type": "number"},
          "h": {"type": "number"}
        }
      }
    }
  }
}`

var compiledImageSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(imageArraySchemaURL, strings.NewReader(imageArraySchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(imageArraySchemaURL)
})

// validateImageArray checks a decoded payload against imageArraySchema and
// flattens schema violations into a single readable reason.
func validateImageArray(payload any) error {
	schema, err := compiledImageSchema()
	if err != nil {
		return fmt.Errorf("compile image schema: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s", strings.Join(validationIssues(verr), "; "))
		}
		return err
	}
	return nil
}

func validationIssues(err *jsonschema.ValidationError) []string {
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "#"
			} else if !strings.HasPrefix(location, "#") {
				location = "#" + location
			}
			issues = append(issues, fmt.Sprintf("%s: %s", location, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
