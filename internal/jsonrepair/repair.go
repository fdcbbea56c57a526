// Package jsonrepair recovers structured data from model output that is
// almost, but not quite, valid JSON: code-fence wrappers, glitched hex
// color runs, trailing commas, and truncated tails.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMissingResponse   = errors.New("model returned no content")
	ErrMalformedResponse = errors.New("model returned malformed JSON")
)

var (
	fenceOpenRegex  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	fenceCloseRegex = regexp.MustCompile("\\s*```$")
	hexRunRegex     = regexp.MustCompile(`(#[0-9a-fA-F]{6})[0-9a-fA-F]+`)
	trailingComma   = regexp.MustCompile(`,(\s*[}\]])`)
	danglingHex     = regexp.MustCompile(`"#[0-9a-fA-F]{1,8}$`)
)

// StripCodeFence removes a Markdown code-fence wrapper if present.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = fenceOpenRegex.ReplaceAllString(trimmed, "")
	trimmed = fenceCloseRegex.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

// TruncateHexRuns collapses glitchy runs of hex digits after a #RRGGBB
// token down to exactly six. Some image-adjacent models emit colors like
// "#FF5733333333" when they loop on a digit.
func TruncateHexRuns(s string) string {
	return hexRunRegex.ReplaceAllString(s, "$1")
}

// StripTrailingCommas removes commas directly before a closing brace or
// bracket, which strict JSON rejects.
func StripTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// Clean applies every repair transform in order. Each step is a no-op on
// well-formed input.
func Clean(s string) string {
	s = StripCodeFence(s)
	s = TruncateHexRuns(s)
	s = StripTrailingCommas(s)
	return s
}

// Parse cleans raw model output and unmarshals it into v. On a strict
// parse failure it runs a single salvage pass (close a dangling string,
// append missing closers) and retries once. Empty input is reported as a
// missing response, not a parse error.
func Parse(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ErrMissingResponse
	}

	cleaned := Clean(trimmed)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	salvaged := salvage(cleaned)
	if err := json.Unmarshal([]byte(salvaged), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// salvage closes off a response that was cut mid-stream: a string left
// open right after a hex-color token gets its quote back, then every
// unmatched { or [ gets the matching closer appended in reverse order.
func salvage(s string) string {
	s = strings.TrimRight(s, " \t\r\n")

	if danglingHex.MatchString(s) {
		s += `"`
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, c)
			}
		case '}':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}
