package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// entityPrefixes maps entity types to their expected ID prefixes
var entityPrefixes = map[string]string{
	"product":             "PROD",
	"work center":         "WC",
	"BOM":                 "BOM",
	"manufacturing order": "MO",
	"work order":          "WO",
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// validateEntityID checks if an ID has the correct prefix format.
// Returns an error with helpful message if the ID appears to be a short ID.
func validateEntityID(id, entityType string) error {
	if id == "" {
		return nil // Empty is OK, let other validation handle required fields
	}

	prefix, ok := entityPrefixes[entityType]
	if !ok {
		return nil
	}

	expectedPattern := prefix + "-"
	if strings.HasPrefix(id, expectedPattern) {
		return nil
	}

	if digitsOnly.MatchString(id) {
		return fmt.Errorf("invalid %s ID '%s'. Use full ID format: %s-%s", entityType, id, prefix, id)
	}

	if strings.HasPrefix(strings.ToUpper(id), expectedPattern) {
		return fmt.Errorf("invalid %s ID '%s'. IDs are case-sensitive, use: %s", entityType, id, strings.ToUpper(id))
	}

	return fmt.Errorf("invalid %s ID '%s'. Expected format: %s-xxx", entityType, id, prefix)
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", name, s)
	}
	return v, nil
}
