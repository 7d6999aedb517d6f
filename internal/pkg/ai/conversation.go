package ai

import (
	"github.com/sashabaranov/go-openai"
)

// Conversation is the ordered message history of a chat-style session.
// It is a value: every method returns a new Conversation and leaves the receiver untouched,
// so the review loop can fold over it.
type Conversation struct {
	messages []openai.ChatCompletionMessage
}

// NewConversation starts a history with the role instruction and the first prompt.
func NewConversation(system, user string) Conversation {
	return Conversation{messages: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}}
}

// IsEmpty reports whether no call has been made yet.
func (c Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Len returns the number of messages.
func (c Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the history in insertion order.
func (c Conversation) Messages() []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// WithUser returns the history extended by a user message.
func (c Conversation) WithUser(content string) Conversation {
	return c.with(openai.ChatMessageRoleUser, content)
}

// WithAssistant returns the history extended by an assistant reply.
func (c Conversation) WithAssistant(content string) Conversation {
	return c.with(openai.ChatMessageRoleAssistant, content)
}

func (c Conversation) with(role, content string) Conversation {
	next := make([]openai.ChatCompletionMessage, len(c.messages), len(c.messages)+1)
	copy(next, c.messages)
	next = append(next, openai.ChatCompletionMessage{Role: role, Content: content})
	return Conversation{messages: next}
}
