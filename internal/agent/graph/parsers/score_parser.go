package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	logx "github.com/agentic-rag/server/pkg/logger"
)

// basic safety limit to avoid pathological grader outputs
const maxScoreContentLen = 16 * 1024 // 16KB

type binaryScore struct {
	Score string `json:"score"`
}

// ParseBinaryScore extracts a yes/no judgment from a grader response.
// The expected shape is `{"score": "yes"}` (optionally inside a fenced code
// block). When the response is not valid JSON the parser falls back to plain
// text matching, which keeps small grading models usable even when they
// ignore the output format instructions.
func ParseBinaryScore(content string) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, fmt.Errorf("empty grader response")
	}
	if len(content) > maxScoreContentLen {
		content = content[:maxScoreContentLen]
	}

	content = stripCodeFence(content)

	var parsed binaryScore
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		switch strings.ToLower(strings.TrimSpace(parsed.Score)) {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		default:
			logx.Warn().Str("score", parsed.Score).Msg("Invalid grader score, defaulting to no")
			return false, nil
		}
	}

	// Fallback: text matching on the raw response.
	logx.Warn().Msg("Grader response is not JSON, falling back to text matching")
	lower := strings.ToLower(content)
	if strings.Contains(lower, "yes") {
		return true, nil
	}
	return false, nil
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line (e.g. "json")
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
