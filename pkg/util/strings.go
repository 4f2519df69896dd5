package util

import "strings"

// SanitizeName replaces characters that are unsafe in a file name with
// hyphens. Letters, digits, '-', '_' and '.' are kept; leading dots are
// replaced so the result is never hidden or a relative path element.
func SanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' {
			result = append(result, c)
		} else {
			result = append(result, '-')
		}
	}
	s := string(result)
	if trimmed := strings.TrimLeft(s, "."); trimmed != s {
		s = strings.Repeat("-", len(s)-len(trimmed)) + trimmed
	}
	if s == "" {
		return "-"
	}
	return s
}
