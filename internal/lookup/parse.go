package lookup

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseAnalysis extracts the JSON analysis object from raw model output.
// Models wrap JSON in markdown fences or prose often enough that the parser
// scans for the outermost object instead of decoding the response verbatim.
func ParseAnalysis(raw string) (*ImageAnalysis, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var analysis ImageAnalysis
	if err := json.Unmarshal([]byte(obj), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	analysis.Name = strings.TrimSpace(analysis.Name)
	tags := analysis.Tags[:0]
	for _, tag := range analysis.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	analysis.Tags = tags

	return &analysis, nil
}

// ParseTexts extracts a JSON string array from raw model output, for
// translation responses.
func ParseTexts(raw string) ([]string, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var texts []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &texts); err != nil {
		return nil, fmt.Errorf("failed to parse translation response: %w", err)
	}
	return texts, nil
}

func extractObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return raw[start : end+1], nil
}
