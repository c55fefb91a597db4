// Package providertest offers an in-memory provider.Provider for tests.
package providertest

import (
	"context"
	"errors"
	"sync"

	"deckchat/internal/provider"
)

// Fake replays canned completions and speech. Replies are consumed in order and the last one
// repeats. Complete and Speak may be overridden with the Func fields.
type Fake struct {
	mu sync.Mutex

	Replies      []string
	CompleteErr  error
	CompleteFunc func(req provider.CompletionRequest) (string, error)

	Audio     []byte
	SpeakErr  error
	SpeakFunc func(req provider.SpeechRequest) ([]byte, error)

	Models []provider.ModelInfo
	Model  string

	Requests []provider.CompletionRequest
	Speeches []provider.SpeechRequest
}

func (f *Fake) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	fn := f.CompleteFunc
	err := f.CompleteErr
	var reply string
	if len(f.Replies) > 0 {
		reply = f.Replies[0]
		if len(f.Replies) > 1 {
			f.Replies = f.Replies[1:]
		}
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return provider.CompletionResponse{}, err
	}
	if fn != nil {
		content, err := fn(req)
		return provider.CompletionResponse{Content: content, FinishReason: "stop"}, err
	}
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	return provider.CompletionResponse{Content: reply, FinishReason: "stop"}, nil
}

func (f *Fake) Speak(ctx context.Context, req provider.SpeechRequest) ([]byte, error) {
	f.mu.Lock()
	f.Speeches = append(f.Speeches, req)
	fn, audio, err := f.SpeakFunc, f.Audio, f.SpeakErr
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return nil, err
	}
	return audio, nil
}

func (f *Fake) ListModels(context.Context) ([]provider.ModelInfo, error) {
	if f.Models == nil {
		return nil, errors.New("models unavailable")
	}
	return f.Models, nil
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) CurrentModel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Model
}

func (f *Fake) SetModel(model string) error {
	f.mu.Lock()
	f.Model = model
	f.mu.Unlock()
	return nil
}

// CompleteCalls returns a copy of the recorded completion requests.
func (f *Fake) CompleteCalls() []provider.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.CompletionRequest(nil), f.Requests...)
}

// SpeakCalls returns a copy of the recorded speech requests.
func (f *Fake) SpeakCalls() []provider.SpeechRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.SpeechRequest(nil), f.Speeches...)
}
