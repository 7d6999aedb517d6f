package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/commitsmith/commitsmith/internal/pkg/config"
)

func TestConversation_ValueSemantics(t *testing.T) {
	base := NewConversation("sys", "prompt")
	extended := base.WithUser("again").WithAssistant("reply")

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 4, extended.Len())

	roles := []string{}
	for _, m := range extended.Messages() {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{
		openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
	}, roles)

	// Branching from the same history must not share storage.
	a := extended.WithUser("a")
	b := extended.WithUser("b")
	assert.Equal(t, "a", a.Messages()[4].Content)
	assert.Equal(t, "b", b.Messages()[4].Content)
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	c := NewConversation("sys", "prompt")
	msgs := c.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "sys", c.Messages()[0].Content)
}

// Property: after N chat generation calls the history holds 2 + 2*(N-1) messages.
func TestConversationGrowth_Property(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "feat: draft"},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	profile, _ := ProfileFor(config.ProviderLMStudio)
	provider := NewChatProvider(config.Config{Provider: config.ProviderLMStudio, BaseURL: server.URL, Model: "m"}, profile, server.Client())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.MaxSize = 6
	parameters.Rng.Seed(42)
	properties := gopter.NewProperties(parameters)

	properties.Property("history grows by two per revision", prop.ForAll(
		func(feedback []string) bool {
			ctx := context.Background()

			result, err := provider.Generate(ctx, Conversation{}, GenerateRequest{Changes: sampleChanges})
			if err != nil || result.History.Len() != 2 {
				return false
			}

			history, draft := result.History, result.Text
			for i, line := range feedback {
				result, err = provider.Generate(ctx, history, GenerateRequest{
					Changes:         sampleChanges,
					PreviousMessage: draft,
					Feedback:        line,
				})
				if err != nil {
					return false
				}
				if result.History.Len() != history.Len()+2 {
					return false
				}
				n := i + 2
				if result.History.Len() != 2+2*(n-1) {
					return false
				}
				history, draft = result.History, result.Text
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
