// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/advision/internal/llm"
)

// Call records one request made to a Fake.
type Call struct {
	Kind     string
	Tier     llm.ModelTier
	Messages []llm.Message
}

// Prompt returns the content of the last message.
func (c Call) Prompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1].Content
}

// Fake returns Reply (or Err) for every request and records the calls.
type Fake struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls []Call
}

var _ llm.Client = (*Fake)(nil)

func (f *Fake) record(kind string, tier llm.ModelTier, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Kind: kind, Tier: tier, Messages: messages})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *Fake) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier, _ ...llm.Option) (string, error) {
	return f.record("content", tier, []llm.Message{llm.UserMessage(prompt)})
}

func (f *Fake) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier, _ ...llm.Option) (string, error) {
	reply, err := f.record("json", tier, []llm.Message{llm.UserMessage(prompt)})
	return llm.CleanJSONBlock(reply), err
}

func (f *Fake) Chat(_ context.Context, messages []llm.Message, tier llm.ModelTier, _ ...llm.Option) (string, error) {
	return f.record("chat", tier, messages)
}

func (f *Fake) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

func (f *Fake) Close() error {
	return nil
}

// Calls returns the requests made so far.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
