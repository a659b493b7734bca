package server

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	maxNameLength   = 20
	maxGuessLength  = 60
	maxDrawingBytes = 32 * 1024
)

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

// validateText normalizes and bounds a free-text field. Guess text
// never passes through here: guesses are compared exactly as sent.
func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}

// hasStrokeCoords accepts only JSON objects carrying x and y, the
// minimum for a stroke point.
func hasStrokeCoords(data json.RawMessage) bool {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		return false
	}
	_, hasX := decoded["x"]
	_, hasY := decoded["y"]
	return hasX && hasY
}
