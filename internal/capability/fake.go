package capability

import (
	"context"
	"sync"
	"time"
)

// Call records one invocation against a ScriptedClient.
type Call struct {
	SystemContext string
	Prompt        string
}

// ScriptedClient is an in-memory Client for tests. Responses are either a
// fixed queue (Responses) or computed per call (Respond). It records every
// call it receives.
type ScriptedClient struct {
	ModelID string

	// Responses are returned in order; the last one repeats once exhausted.
	Responses []string
	// Respond, when set, overrides Responses entirely.
	Respond func(systemContext, prompt string) (string, error)
	// Err, when set, is returned from every call.
	Err error

	mu    sync.Mutex
	calls []Call
	next  int
}

func (s *ScriptedClient) Model() string {
	if s.ModelID == "" {
		return "scripted"
	}
	return s.ModelID
}

func (s *ScriptedClient) Invoke(ctx context.Context, systemContext, prompt string) (*Invocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{SystemContext: systemContext, Prompt: prompt})
	idx := s.next
	if idx >= len(s.Responses) && len(s.Responses) > 0 {
		idx = len(s.Responses) - 1
	}
	s.next++
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	var text string
	var err error
	switch {
	case s.Respond != nil:
		text, err = s.Respond(systemContext, prompt)
	case len(s.Responses) > 0:
		text = s.Responses[idx]
	default:
		text = "ok"
	}
	if err != nil {
		return nil, err
	}

	return &Invocation{
		Text: text,
		Usage: Usage{
			InputTokens:  EstimateTokens(systemContext + prompt),
			OutputTokens: EstimateTokens(text),
		},
		Model:    s.Model(),
		Duration: time.Millisecond,
	}, nil
}

// Calls returns a copy of the recorded invocations.
func (s *ScriptedClient) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many invocations the client has served.
func (s *ScriptedClient) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
