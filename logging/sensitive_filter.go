package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns detect credential-looking values inside logged strings.
// Compiled once at package initialization.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9_-]{20,})`),         // OpenAI-style keys
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),  // Bearer tokens
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`), // password= / password:
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),   // secret= / secret:
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),    // token= / token:
	regexp.MustCompile(`(?i)(api_?key\s*[:=]\s*[^\s,;]{8,})`), // api_key= / apikey:
}

// sensitiveFieldMarkers are field-name substrings that indicate sensitive data.
var sensitiveFieldMarkers = []string{
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
}

// RedactSensitiveData scans a string and redacts any detected sensitive data.
// Pure function: takes a string, returns a sanitized string.
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}

	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// RedactField redacts a field value when its name indicates sensitive data,
// and otherwise scans the value itself for sensitive patterns.
//
// Example:
//
//	RedactField("API_KEY", "sk-secret123")  // "[REDACTED]"
//	RedactField("endpoint", "/api/upload")  // unchanged
func RedactField(fieldName, fieldValue string) string {
	if IsSensitiveField(fieldName) {
		return RedactedPlaceholder
	}
	return RedactSensitiveData(fieldValue)
}

// IsSensitiveField returns true if the field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	upperName := strings.ToUpper(fieldName)
	for _, marker := range sensitiveFieldMarkers {
		if strings.Contains(upperName, marker) {
			return true
		}
	}
	return false
}
