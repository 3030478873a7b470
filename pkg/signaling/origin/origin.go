package origin

import (
	"regexp"
	"strings"
)

// CompilePatterns turns an allow-list of origins into anchored, case
// insensitive patterns. A '*' matches any run of characters, so "*" alone
// admits every origin including an absent one. Invalid entries are skipped.
func CompilePatterns(allowed []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(allowed))
	for _, entry := range allowed {
		entry = normalize(entry)
		if entry == "" {
			continue
		}

		pattern := "(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(entry), `\*`, `.*`) + "$"
		if regex, err := regexp.Compile(pattern); err == nil {
			patterns = append(patterns, regex)
		}
	}
	return patterns
}

// IsAllowed reports whether the Origin header value matches any pattern.
func IsAllowed(origin string, patterns []*regexp.Regexp) bool {
	origin = normalize(origin)
	for _, pattern := range patterns {
		if pattern.MatchString(origin) {
			return true
		}
	}
	return false
}

func normalize(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
