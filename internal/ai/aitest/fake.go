// Package aitest provides a scripted reasoning model for tests.
package aitest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// ErrOffline is returned by a Fake with no scripted replies
var ErrOffline = errors.New("reasoning service offline")

// Reply is one scripted response
type Reply struct {
	Content string
	Err     error
	// Delay blocks the call; a delay longer than the client timeout simulates a hang
	Delay time.Duration
}

// Fake implements ai.Completer by replaying scripted replies in order.
// When the script runs out it fails with ErrOffline.
type Fake struct {
	mu      sync.Mutex
	replies []Reply
	Prompts []string
}

// NewFake returns a Fake that replays replies in order
func NewFake(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

// Offline returns a Fake whose every call fails
func Offline() *Fake {
	return &Fake{}
}

// GenerateContent returns the next scripted reply
func (f *Fake) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.Prompts = append(f.Prompts, text.Text)
			}
		}
	}
	if len(f.replies) == 0 {
		f.mu.Unlock()
		return nil, ErrOffline
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	f.mu.Unlock()

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: reply.Content}},
	}, nil
}

// Calls returns how many requests reached the fake
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}
