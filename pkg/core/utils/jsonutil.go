// Package utils holds shared helpers for cleaning up LLM output before it
// enters the typed pipeline.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the usual LLM JSON mistakes: markdown fences, single
// quotes, trailing commas, unclosed brackets, TRUE/FALSE casing.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// DecodeLenient unmarshals data into out, trying strict JSON first, then a
// repaired pass, then HJSON as the most permissive decoder. The error from
// the strict pass is returned when everything fails.
func DecodeLenient(data string, out interface{}) error {
	data = StripCodeFence(data)

	strictErr := json.Unmarshal([]byte(data), out)
	if strictErr == nil {
		return nil
	}

	if repaired, err := RepairJSON(data); err == nil {
		if json.Unmarshal([]byte(repaired), out) == nil {
			return nil
		}
	}

	if hjson.Unmarshal([]byte(data), out) == nil {
		return nil
	}

	return fmt.Errorf("failed to decode model output: %w", strictErr)
}

// StripCodeFence removes an outer markdown code block (``` or ```json) if
// the payload is wrapped in one.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```markdown")
	cleaned = strings.TrimPrefix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
