package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/theimaginaryfoundation/reverie/pipeline/provider"
)

// DefaultTextModels is the fallback chain for the text provider: the primary
// model first, then a smaller model to fall over to under rate limiting.
var DefaultTextModels = []string{"mistral-large-latest", "mistral-small-latest"}

// DefaultAnalysisPolicy is the retry budget for analysis calls.
func DefaultAnalysisPolicy(models []string) RetryPolicy {
	if len(models) == 0 {
		models = DefaultTextModels
	}
	return RetryPolicy{Models: models, MaxAttempts: 3, BaseBackoff: 10 * time.Second}
}

// EmotionCategories is the fixed vocabulary of the emotion analysis.
var EmotionCategories = []string{"happiness", "anxiety", "sadness", "anger", "fatigue", "fear"}

// ThemeCategories is the fixed vocabulary of the theme analysis.
var ThemeCategories = []string{"nature", "urban", "people", "objects", "abstract", "action", "calm"}

// emotionScores and themeScores only exist for schema reflection; responses
// are decoded into plain maps and validated against the category vocabulary.
type emotionScores struct {
	Happiness float64 `json:"happiness"`
	Anxiety   float64 `json:"anxiety"`
	Sadness   float64 `json:"sadness"`
	Anger     float64 `json:"anger"`
	Fatigue   float64 `json:"fatigue"`
	Fear      float64 `json:"fear"`
}

type themeScores struct {
	Nature   float64 `json:"nature"`
	Urban    float64 `json:"urban"`
	People   float64 `json:"people"`
	Objects  float64 `json:"objects"`
	Abstract float64 `json:"abstract"`
	Action   float64 `json:"action"`
	Calm     float64 `json:"calm"`
}

// Analysis fixes one scoring task: its instruction template, its category
// vocabulary, and the strict response schema sent to the provider.
type Analysis struct {
	Name         string
	Instructions string
	Categories   []string
	Schema       map[string]interface{}
}

// EmotionAnalysis scores the emotional content of a transcript.
var EmotionAnalysis = Analysis{
	Name:         "EmotionScores",
	Instructions: emotionInstructions,
	Categories:   EmotionCategories,
	Schema:       provider.GenerateSchema[emotionScores](),
}

// ThemeAnalysis scores the visual themes of a transcript.
var ThemeAnalysis = Analysis{
	Name:         "ThemeScores",
	Instructions: themeInstructions,
	Categories:   ThemeCategories,
	Schema:       provider.GenerateSchema[themeScores](),
}

// ContentAnalyzer runs one fixed Analysis against the text provider and
// normalizes the returned raw scores into a distribution.
type ContentAnalyzer struct {
	client    *openai.Client
	analysis  Analysis
	policy    RetryPolicy
	sharpness float64
}

// NewContentAnalyzer returns an analyzer for the given task. The retry policy
// applies per call; see RetryPolicy for the fallback semantics.
func NewContentAnalyzer(client *openai.Client, analysis Analysis, policy RetryPolicy) *ContentAnalyzer {
	return &ContentAnalyzer{
		client:    client,
		analysis:  analysis,
		policy:    policy,
		sharpness: DefaultSharpness,
	}
}

// Analyze scores text and returns the normalized category distribution.
// Malformed or schema-violating provider output fails terminally with
// ErrInvalidAnalysisResponse; rate limits are retried per the policy.
func (a *ContentAnalyzer) Analyze(ctx context.Context, text string) (map[string]float64, error) {
	var raw map[string]float64
	err := a.policy.Do(ctx, func(ctx context.Context, model string) error {
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(a.analysis.Instructions),
				openai.UserMessage("Analyze the text below (respond in JSON format): " + text),
			},
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
					JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   a.analysis.Name,
						Schema: a.analysis.Schema,
						Strict: openai.Bool(true),
					},
				},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: completion has no choices", ErrInvalidAnalysisResponse)
		}
		scores, err := parseScores(resp.Choices[0].Message.Content, a.analysis.Categories)
		if err != nil {
			return err
		}
		raw = scores
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", a.analysis.Name, err)
	}
	return SoftmaxSharpened(raw, a.sharpness), nil
}

// parseScores decodes the model's JSON object and checks it against the
// expected vocabulary: every category present, no extras.
func parseScores(content string, categories []string) (map[string]float64, error) {
	var m map[string]float64
	if err := decodeModelJSON(content, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysisResponse, err)
	}
	for _, c := range categories {
		if _, ok := m[c]; !ok {
			return nil, fmt.Errorf("%w: missing category %q", ErrInvalidAnalysisResponse, c)
		}
	}
	if len(m) != len(categories) {
		return nil, fmt.Errorf("%w: got %d categories, want %d", ErrInvalidAnalysisResponse, len(m), len(categories))
	}
	return m, nil
}
