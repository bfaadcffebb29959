package comparator

import (
	"encoding/json"
	"fmt"
	"strings"
)

const judgeSystemPrompt = `You are an impartial judge comparing two assistant responses. ` +
	`You respond with a single JSON object and nothing else.`

// buildJudgePrompt renders the comparison request. The candidates carry only
// positional labels; nothing in the prompt reveals which arm produced which.
func buildJudgePrompt(userPrompt, candidateA, candidateB string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "A user asked:\n%s\n\n", userPrompt)
	fmt.Fprintf(&sb, "Response A:\n---\n%s\n---\n\n", candidateA)
	fmt.Fprintf(&sb, "Response B:\n---\n%s\n---\n\n", candidateB)

	sb.WriteString(`Judge which response serves the user better on these dimensions:
- correctness: is the content accurate and would it work
- completeness: does it fully address the request
- quality: is it well structured and professionally presented
- usefulness: can the user act on it directly

Respond with exactly: {"verdict": "A" | "B" | "tie", "reasoning": "one or two sentences"}`)

	return sb.String()
}

type judgeReply struct {
	Verdict   string `json:"verdict"`
	Reasoning string `json:"reasoning"`
}

// parseVerdict extracts the positional verdict and rationale from judge
// output. It tolerates prose around the JSON; a reply with no usable verdict
// comes back empty and de-maps to a tie.
func parseVerdict(text string) (verdict, rationale string) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var reply judgeReply
		if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err == nil {
			return reply.Verdict, strings.TrimSpace(reply.Reasoning)
		}
	}

	// last resort: a bare "A", "B" or "tie" answer
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "a", "b", "tie":
		return strings.TrimSpace(text), ""
	}
	return "", strings.TrimSpace(text)
}
