package dispatch

import (
	"strings"

	"github.com/oliveagle/jsonpath"
)

// ResolveParams resolves $-prefixed values in params by jsonpath lookup
// against the workflow data map. Nested maps are resolved recursively, other
// values pass through unchanged.
func ResolveParams(data map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	resolveParams(data, params, output)
	return output
}

func resolveParams(data map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		switch value := v.(type) {
		case map[string]any:
			out := make(map[string]any, len(value))
			output[k] = out
			resolveParams(data, value, out)
		case string:
			if strings.HasPrefix(value, "$") {
				resolved, err := jsonpath.JsonPathLookup(data, value)
				if err != nil {
					output[k] = nil
					continue
				}
				output[k] = resolved
			} else {
				output[k] = value
			}
		default:
			output[k] = v
		}
	}
}
