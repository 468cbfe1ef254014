package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
)

// DefaultComposerPolicy is the retry budget for prompt composition. Prompt
// generation is cheap to fall over, so it gets a single attempt per model and
// a short backoff.
func DefaultComposerPolicy(models []string) RetryPolicy {
	if len(models) == 0 {
		models = DefaultTextModels
	}
	return RetryPolicy{Models: models, MaxAttempts: 1, BaseBackoff: 2 * time.Second}
}

// PromptComposer turns a transcript into an image-generation prompt via the
// text provider.
type PromptComposer struct {
	client *openai.Client
	policy RetryPolicy
}

// NewPromptComposer returns a composer using the given SDK client.
func NewPromptComposer(client *openai.Client, policy RetryPolicy) *PromptComposer {
	return &PromptComposer{client: client, policy: policy}
}

// Compose returns the raw completion text as the image prompt.
func (c *PromptComposer) Compose(ctx context.Context, transcript string) (string, error) {
	var prompt string
	err := c.policy.Do(ctx, func(ctx context.Context, model string) error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(composerInstructions),
				openai.UserMessage(composerRequest + transcript),
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("compose: completion has no choices")
		}
		prompt = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return prompt, nil
}
