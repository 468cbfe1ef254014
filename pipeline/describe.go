package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/openai/openai-go"
)

// DefaultVisionModel is the vision-capable chat model used for descriptions.
const DefaultVisionModel = "pixtral-12b-2409"

// ImageDescriber asks a vision model to describe an existing image. It sits
// outside the run pipeline and writes no history.
type ImageDescriber struct {
	client *openai.Client
	model  string
}

// NewImageDescriber returns a describer using the given SDK client. An empty
// model falls back to DefaultVisionModel.
func NewImageDescriber(client *openai.Client, model string) *ImageDescriber {
	if model == "" {
		model = DefaultVisionModel
	}
	return &ImageDescriber{client: client, model: model}
}

// Describe sends the image inline as a base64 data URL and returns the
// model's description.
func (d *ImageDescriber) Describe(ctx context.Context, image []byte) (string, error) {
	mt := mimetype.Detect(image)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("describe: payload is %s, not an image", mt.String())
	}
	dataURL := "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(describeInstructions),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart("Describe this image."),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("describe: completion has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
