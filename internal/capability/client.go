// Package capability isolates the single non-deterministic boundary of the
// engine: invoking a language-capable model. Everything above this package
// (generation, task execution, judging) talks to the Client interface and can
// be tested against the scripted fake.
package capability

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Errors surfaced across the capability boundary. Callers match with
// errors.Is; the concrete provider error stays attached as the cause.
var (
	// ErrTimeout means the per-call deadline elapsed before a response.
	ErrTimeout = errors.New("capability call timed out")
	// ErrEmptyResponse means the provider answered with no usable text.
	ErrEmptyResponse = errors.New("capability returned an empty response")
)

// Usage is token accounting for one invocation.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns combined input and output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// Invocation is the result of one capability call.
type Invocation struct {
	Text     string
	Usage    Usage
	Model    string
	Duration time.Duration
}

// Client invokes a model once. systemContext may be empty; when present it is
// passed as the provider's system message verbatim. Implementations must
// honor ctx cancellation and report the concrete model id they called.
type Client interface {
	Invoke(ctx context.Context, systemContext, prompt string) (*Invocation, error)
	Model() string
}

// Role names what a capability call is for. The router picks a model tier
// per role.
type Role string

const (
	// RoleGeneration synthesizes benchmark suites. Needs the smart tier.
	RoleGeneration Role = "generation"
	// RoleJudge decides A/B comparisons. Needs the smart tier.
	RoleJudge Role = "judge"
	// RoleExecution answers task and quality prompts. Cheap tier.
	RoleExecution Role = "execution"
)

// Router maps roles onto configured clients.
type Router struct {
	smart Client
	cheap Client
}

// NewRouter builds a router. If cheap is nil the smart client serves every
// role.
func NewRouter(smart, cheap Client) *Router {
	if cheap == nil {
		cheap = smart
	}
	return &Router{smart: smart, cheap: cheap}
}

// For returns the client serving the given role.
func (r *Router) For(role Role) Client {
	switch role {
	case RoleGeneration, RoleJudge:
		return r.smart
	default:
		return r.cheap
	}
}
