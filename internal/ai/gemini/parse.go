package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type questionResponse struct {
	Question  string
	TimeLimit int
}

type evaluationResponse struct {
	Score    float64
	Analysis string
}

// parseQuestionResponse pulls the question out of a model reply. Replies
// that are not valid JSON still yield the most question-like text; a valid
// object without a question yields nothing.
func parseQuestionResponse(raw string) questionResponse {
	text := extractJSON(raw)
	if text == "" {
		return questionResponse{}
	}

	obj, ok := jsonObject(text)
	if !ok {
		return questionResponse{Question: sanitizeQuestion(fallbackQuestion(text))}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(obj), &data); err != nil {
		return questionResponse{Question: sanitizeQuestion(fallbackQuestion(obj))}
	}

	q, ok := data["question"]
	if !ok {
		return questionResponse{}
	}

	resp := questionResponse{Question: sanitizeQuestion(coerceString(q))}
	if limit := coerceFloat(data["time_limit"]); !math.IsNaN(limit) && limit > 0 {
		resp.TimeLimit = int(limit)
	}
	return resp
}

func parseEvaluationResponse(raw string) (*evaluationResponse, error) {
	obj, ok := jsonObject(extractJSON(raw))
	if !ok {
		return nil, errors.New("evaluation response contains no JSON object")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(obj), &data); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, errors.New("evaluation response has no score")
	}

	analysis := coerceString(data["analysis"])
	if analysis == "" {
		analysis = "No comment provided."
	}

	return &evaluationResponse{Score: score, Analysis: analysis}, nil
}

var (
	closingFencePattern = regexp.MustCompile("(?m)^```.*\n|```$")
	closingJSONPattern  = regexp.MustCompile(`(?s)^\{.*\}$`)
)

// cleanClosing drops code fences and bare JSON objects from a closing reply.
func cleanClosing(raw string) string {
	text := closingFencePattern.ReplaceAllString(strings.TrimSpace(raw), "")
	text = closingJSONPattern.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.TrimSpace(text)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// jsonObject returns the text between the first '{' and the last '}'.
func jsonObject(text string) (string, bool) {
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

var (
	questionFieldPattern = regexp.MustCompile(`"question"\s*:\s*"([\s\S]+?)"\s*}`)
	quotedTextPattern    = regexp.MustCompile(`"([^"]{20,})"`)
)

const minFallbackLineLength = 30

func fallbackQuestion(text string) string {
	if m := questionFieldPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := quotedTextPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	var longest string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minFallbackLineLength && len(line) > len(longest) {
			longest = line
		}
	}
	if longest != "" {
		return longest
	}
	return text
}

var (
	edgeQuotesPattern    = regexp.MustCompile("^[`\"]+|[`\"]+$")
	leadingQuotePattern  = regexp.MustCompile(`^\s*"\s*`)
	leadingNumberPattern = regexp.MustCompile(`^\s*\(?\d+\)?[).\s:-]+\s*`)
)

// sanitizeQuestion strips quotes, list numbering and trailing JSON debris.
func sanitizeQuestion(q string) string {
	s := strings.TrimRight(strings.TrimSpace(q), ",;}]")
	s = edgeQuotesPattern.ReplaceAllString(s, "")
	s = leadingQuotePattern.ReplaceAllString(s, "")
	s = leadingNumberPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var codeBlockPattern = regexp.MustCompile(`<pre><code([^>]*)>([\s\S]*?)</code></pre>`)

// formatCodeBlocks turns <br> tags inside code blocks back into newlines.
func formatCodeBlocks(question string) string {
	return codeBlockPattern.ReplaceAllStringFunc(question, func(block string) string {
		m := codeBlockPattern.FindStringSubmatch(block)
		return "<pre><code" + m[1] + ">" + strings.ReplaceAll(m[2], "<br>", "\n") + "</code></pre>"
	})
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
