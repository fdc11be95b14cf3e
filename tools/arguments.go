package tools

import (
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
)

// ParseArguments checks raw argument text against a tool's input schema and
// returns the decoded object. The text must be one JSON object whose keys are
// all declared properties, with every required key present and each value of
// its declared type. An empty string counts as an empty object.
func ParseArguments(schema mcptypes.ToolInputSchema, arguments string) (map[string]any, error) {
	if arguments == "" {
		arguments = "{}"
	}
	if !gjson.Valid(arguments) {
		return nil, fmt.Errorf("arguments are not valid JSON: %s", arguments)
	}

	parsed := gjson.Parse(arguments)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("arguments must be a JSON object, got %s", parsed.Type)
	}

	var fieldErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		property, declared := schema.Properties[key.String()]
		if !declared {
			fieldErr = fmt.Errorf("unexpected argument %q", key.String())
			return false
		}
		if want := propertyType(property); want != "" && !matchesType(value, want) {
			fieldErr = fmt.Errorf("argument %q must be of type %s", key.String(), want)
			return false
		}
		return true
	})
	if fieldErr != nil {
		return nil, fieldErr
	}

	args, _ := parsed.Value().(map[string]any)
	for _, name := range schema.Required {
		if _, ok := args[name]; !ok {
			return nil, fmt.Errorf("missing required argument %q", name)
		}
	}

	return args, nil
}

func propertyType(property any) string {
	props, ok := property.(map[string]any)
	if !ok {
		return ""
	}
	t, _ := props["type"].(string)
	return t
}

func matchesType(value gjson.Result, want string) bool {
	switch want {
	case "string":
		return value.Type == gjson.String
	case "number":
		return value.Type == gjson.Number
	case "integer":
		return value.Type == gjson.Number && value.Float() == float64(value.Int())
	case "boolean":
		return value.Type == gjson.True || value.Type == gjson.False
	case "object":
		return value.IsObject()
	case "array":
		return value.IsArray()
	case "null":
		return value.Type == gjson.Null
	default:
		return true
	}
}
