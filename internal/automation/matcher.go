package automation

import "strings"

// Matcher checks if a request method matches a pattern.
// Implementations are immutable and safe for concurrent use.
type Matcher interface {
	// Matches returns true if the method matches this pattern
	Matches(method string) bool
	// String returns a human-readable representation
	String() string
}

// matchAny matches any method (wildcard).
type matchAny struct{}

func (matchAny) Matches(string) bool { return true }
func (matchAny) String() string      { return "*" }

// matchExact matches a single method.
type matchExact string

func (m matchExact) Matches(method string) bool { return string(m) == strings.ToUpper(method) }
func (m matchExact) String() string             { return string(m) }

// matchOneOf matches any method in a set.
type matchOneOf []string

func (m matchOneOf) Matches(method string) bool {
	method = strings.ToUpper(method)
	for _, v := range m {
		if v == method {
			return true
		}
	}
	return false
}

func (m matchOneOf) String() string {
	if len(m) == 0 {
		return "(none)"
	}
	return strings.Join(m, "|")
}

// ParseMatcher creates a Matcher from a method pattern.
// - "*" becomes matchAny (matches everything)
// - "GET|POST" becomes matchOneOf{"GET", "POST"}
// - anything else becomes matchExact
// Methods are compared case-insensitively.
func ParseMatcher(pattern string) Matcher {
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	if pattern == "*" {
		return matchAny{}
	}
	if strings.Contains(pattern, "|") {
		return parseOneOf(pattern)
	}
	return matchExact(pattern)
}

func parseOneOf(pattern string) matchOneOf {
	var result []string
	for _, part := range strings.Split(pattern, "|") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return matchOneOf(result)
}
