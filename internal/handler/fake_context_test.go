package handler

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// fakeContext implements the parts of tele.Context the handlers use.
type fakeContext struct {
	tele.Context

	sender   *tele.User
	chat     *tele.Chat
	message  *tele.Message
	callback *tele.Callback
	args     []string

	mu        sync.Mutex
	replies   []string
	sends     []string
	edits     []string
	responses []*tele.CallbackResponse
}

func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Chat() *tele.Chat         { return f.chat }
func (f *fakeContext) Message() *tele.Message   { return f.message }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Args() []string           { return f.args }

func (f *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, what.(string))
	return nil
}

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, what.(string))
	return nil
}

func (f *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, what.(string))
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) lastReply() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.text
	}
	return out
}
