package automation

import "strings"

// MatchPath matches a path pattern against an actual path.
// Pattern: "/doorbell/{room}"
// Path: "/doorbell/kitchen"
// Returns extracted params {"room": "kitchen"} and true if matched.
func MatchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	// Must have same number of segments
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)

	for i, patternPart := range patternParts {
		pathPart := pathParts[i]

		if len(patternPart) > 2 && patternPart[0] == '{' && patternPart[len(patternPart)-1] == '}' {
			params[patternPart[1:len(patternPart)-1]] = pathPart
		} else if patternPart != pathPart {
			return nil, false
		}
	}

	return params, true
}
