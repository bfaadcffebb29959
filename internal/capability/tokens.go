package capability

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of text for providers that do
// not report usage. Uses the cl100k_base encoding when available, otherwise a
// chars/4 estimate.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return (len(text) + 3) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

// FillUsage returns usage as-is when the provider reported it, otherwise an
// estimate derived from the prompt and response text.
func FillUsage(u Usage, promptText, responseText string) Usage {
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		return Usage{
			InputTokens:  EstimateTokens(promptText),
			OutputTokens: EstimateTokens(responseText),
		}
	}
	return u
}
