// Package mcputils binds loosely typed MCP tool arguments onto Go structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is implemented by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// CoerceBindArguments decodes request arguments into target using json tags.
// Clients frequently send every value as a string, so JSON-encoded arrays,
// objects, booleans and numbers inside strings are unpacked first.
// Unknown keys are rejected.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}

	args := request.GetArguments()
	if args == nil {
		args = map[string]interface{}{}
	}
	return decoder.Decode(args)
}

// jsonStringHook unpacks string values whose target kind is not a string.
func jsonStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() == reflect.String {
		return data, nil
	}

	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
			return data, nil
		}
		out := reflect.New(to)
		if err := json.Unmarshal([]byte(raw), out.Interface()); err == nil {
			return out.Elem().Interface(), nil
		}

	case reflect.Map, reflect.Struct:
		if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
			return data, nil
		}
		var out map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}

	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}

	return data, nil
}
