package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/thebenzza/nonnon/internal/domain"
)

// wire shape of the plan contract. Params arrive loosely typed; numbers and
// booleans are stringified during normalization so the rest of the core
// only ever sees map[string]string.
type planPayload struct {
	Confidence float64         `json:"confidence"`
	ReplyHint  string          `json:"reply_hint"`
	Followup   string          `json:"followup_question"`
	Actions    []actionPayload `json:"actions"`
}

type actionPayload struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
}

const maxActionsPerPlan = 5

// DecodePlan parses interpreter output into a normalized Plan. The model is
// told to answer with bare JSON, but decoding still tolerates markdown
// fences and JSON embedded in prose before giving up.
func DecodePlan(raw string) (*domain.Plan, error) {
	candidates := []string{strings.TrimSpace(raw)}
	if fenced := extractFencedBlock(raw); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if braced := extractBracedObject(raw); braced != "" {
		candidates = append(candidates, braced)
	}

	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		var payload planPayload
		if err := json.Unmarshal([]byte(c), &payload); err != nil {
			lastErr = err
			continue
		}
		return normalizePlan(payload), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found")
	}
	return nil, fmt.Errorf("decode plan: %w", lastErr)
}

// normalizePlan applies the closed-enum and range rules: confidence clamped
// to [0,1], unrecognized kinds treated as noop, action count capped.
func normalizePlan(p planPayload) *domain.Plan {
	plan := &domain.Plan{
		Confidence: clamp01(p.Confidence),
		ReplyHint:  strings.TrimSpace(p.ReplyHint),
		Followup:   strings.TrimSpace(p.Followup),
	}

	for _, a := range p.Actions {
		if len(plan.Actions) == maxActionsPerPlan {
			break
		}
		plan.Actions = append(plan.Actions, domain.ActionRequest{
			Kind:   domain.ParseActionKind(a.Kind),
			Params: stringifyParams(a.Params),
		})
	}
	return plan
}

func stringifyParams(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		switch t := v.(type) {
		case string:
			out[key] = strings.TrimSpace(t)
		case float64:
			if t == math.Trunc(t) {
				out[key] = strconv.FormatInt(int64(t), 10)
			} else {
				out[key] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		case bool:
			out[key] = strconv.FormatBool(t)
		case nil:
			// dropped: an explicit null is the same as absent
		default:
			// nested objects/arrays have no place in the contract
		}
	}
	return out
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// extractFencedBlock pulls the body of the first ```json (or bare ```)
// fence out of a markdown-ish response.
func extractFencedBlock(s string) string {
	start := strings.Index(s, "```json")
	if start == -1 {
		start = strings.Index(s, "```")
		if start == -1 {
			return ""
		}
	}
	rest := s[start:]
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return ""
	}
	body := rest[nl+1:]
	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}

// extractBracedObject returns the first brace-balanced object in s, which
// rescues answers like "Sure! {...}".
func extractBracedObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
