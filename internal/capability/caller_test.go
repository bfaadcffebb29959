package capability

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	calls    int
}

func (f *flakyClient) Model() string { return "flaky" }

func (f *flakyClient) Invoke(ctx context.Context, systemContext, prompt string) (*Invocation, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient provider error")
	}
	return &Invocation{Text: "recovered", Model: "flaky"}, nil
}

func TestCallerRetriesTransientFailureOnce(t *testing.T) {
	client := &flakyClient{failures: 1}
	caller := NewCaller(client, WithRetryDelay(time.Millisecond))

	inv, err := caller.Invoke(context.Background(), "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", inv.Text)
	assert.Equal(t, 2, client.calls)
}

func TestCallerGivesUpAfterConfiguredAttempts(t *testing.T) {
	client := &flakyClient{failures: 10}
	caller := NewCaller(client, WithAttempts(2), WithRetryDelay(time.Millisecond))

	_, err := caller.Invoke(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestCallerDoesNotRetryEmptyResponse(t *testing.T) {
	client := &ScriptedClient{Err: ErrEmptyResponse}
	caller := NewCaller(client, WithRetryDelay(time.Millisecond))

	_, err := caller.Invoke(context.Background(), "", "hello")
	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, client.CallCount())
}

func TestCallerStopsWhenParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &ScriptedClient{Responses: []string{"never"}}
	caller := NewCaller(client, WithRetryDelay(time.Millisecond))

	_, err := caller.Invoke(ctx, "", "hello")
	require.Error(t, err)
	// the cancelled context is observed before any retry fires
	assert.LessOrEqual(t, client.CallCount(), 1)
}

func TestRouterRoles(t *testing.T) {
	smart := &ScriptedClient{ModelID: "smart"}
	cheap := &ScriptedClient{ModelID: "cheap"}
	r := NewRouter(smart, cheap)

	assert.Equal(t, "smart", r.For(RoleGeneration).Model())
	assert.Equal(t, "smart", r.For(RoleJudge).Model())
	assert.Equal(t, "cheap", r.For(RoleExecution).Model())
}

func TestRouterFallsBackToSmart(t *testing.T) {
	smart := &ScriptedClient{ModelID: "smart"}
	r := NewRouter(smart, nil)
	assert.Equal(t, "smart", r.For(RoleExecution).Model())
}

func TestFillUsage(t *testing.T) {
	reported := Usage{InputTokens: 10, OutputTokens: 20}
	assert.Equal(t, reported, FillUsage(reported, "prompt", "response"))

	estimated := FillUsage(Usage{}, "a prompt of some length", "a response of some length")
	assert.Greater(t, estimated.InputTokens, 0)
	assert.Greater(t, estimated.OutputTokens, 0)
}
