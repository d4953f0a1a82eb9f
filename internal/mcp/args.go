package mcp

import "fmt"

// stringArg reads a string argument. A required argument must be present and
// non-empty.
func stringArg(args map[string]interface{}, key string, required bool) (string, error) {
	val, ok := args[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// limitArg reads a numeric argument (MCP sends numbers as float64) and
// clamps it to [1, max]. Missing or non-numeric values give def.
func limitArg(args map[string]interface{}, key string, def, max int) int {
	f, ok := args[key].(float64)
	if !ok {
		return def
	}
	n := int(f)
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
