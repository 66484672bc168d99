package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/recallmesh/store"
)

// SentMessage records one message handed to the fake messenger.
type SentMessage struct {
	ChannelID string
	Content   string
}

// FakeMessenger records typing indicators and sends; both can be scripted to
// fail. It satisfies the transport Messenger interface.
type FakeMessenger struct {
	mu sync.Mutex

	TypingErr error
	SendErr   error

	typingCalls []string
	sent        []SentMessage
}

// Typing records the channel and returns the scripted error.
func (f *FakeMessenger) Typing(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typingCalls = append(f.typingCalls, channelID)
	return f.TypingErr
}

// Send records the message and returns the scripted error.
func (f *FakeMessenger) Send(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, SentMessage{ChannelID: channelID, Content: content})
	return f.SendErr
}

// Sent returns the recorded messages.
func (f *FakeMessenger) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage{}, f.sent...)
}

// TypingCalls returns the recorded typing channels.
func (f *FakeMessenger) TypingCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.typingCalls...)
}

// CompleteCall records one completion request made against the fake completer.
type CompleteCall struct {
	Query   string
	Prompt  string // set for grounded calls
	Inbound string // set for grounded calls
	Context []store.Object
}

// FakeCompleter returns a canned reply (or error) for completion calls. Its
// method set matches the dispatcher's completer dependency.
type FakeCompleter struct {
	mu sync.Mutex

	Reply string
	Err   error

	calls []CompleteCall
}

// Complete returns the canned reply.
func (f *FakeCompleter) Complete(_ context.Context, query string, contextRows []store.Object) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, CompleteCall{Query: query, Context: contextRows})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// CompleteGrounded returns the canned reply for a grounded call.
func (f *FakeCompleter) CompleteGrounded(_ context.Context, prompt, inbound string, contextRows []store.Object) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, CompleteCall{Prompt: prompt, Inbound: inbound, Context: contextRows})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// Calls returns the recorded completion requests.
func (f *FakeCompleter) Calls() []CompleteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompleteCall{}, f.calls...)
}
