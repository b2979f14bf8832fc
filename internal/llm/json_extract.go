package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with optional language tag
// Captures: (1) optional language, (2) content
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON extracts JSON from a model response that may be wrapped in
// markdown or surrounded by prose.
// Priority:
// 1. JSON inside ```json ... ``` or ``` ... ``` code blocks
// 2. The first balanced {...} or [...] region in the response
//
// Returns the extracted JSON string and any error. Malformed input is
// reported as an error, never panicked on.
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFromCodeBlock(response); found {
		return jsonStr, nil
	}

	if jsonStr, found := extractBalancedRegion(response); found {
		return jsonStr, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

// extractFromCodeBlock finds JSON in markdown code blocks, skipping blocks
// tagged as other languages.
func extractFromCodeBlock(response string) (string, bool) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		if lang != "" && lang != "json" {
			continue
		}

		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}

		if isValidJSON(content) {
			return content, true
		}
	}

	return "", false
}

// extractBalancedRegion finds the first complete JSON object or array in
// free-form text by bracket matching.
func extractBalancedRegion(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start := -1
	closeChar := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		closeChar = ']'
	}

	if start < 0 {
		return "", false
	}

	jsonStr := scanToClosingBracket(response[start:], closeChar)
	if jsonStr != "" && isValidJSON(jsonStr) {
		return jsonStr, true
	}

	return "", false
}

// scanToClosingBracket walks the string tracking nesting depth and string
// literals (including escapes) until the opening bracket is balanced.
func scanToClosingBracket(s string, closeChar byte) string {
	if len(s) == 0 {
		return ""
	}

	openChar := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return "" // unmatched brackets
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
