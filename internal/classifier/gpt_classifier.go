package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/recycle-bot/internal/imageinput"
	"github.com/xaenox/recycle-bot/internal/models"
	"go.uber.org/zap"
)

var ErrNoChoices = errors.New("model returned no choices")

// ChatCompletionCreator is the part of the OpenAI client the classifier uses.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type visionResponse struct {
	Predictions []models.Prediction `json:"predictions"`
}

type VisionClassifier struct {
	client         ChatCompletionCreator
	model          string
	maxTokens      int
	temperature    float64
	maxPredictions int
	logger         *zap.Logger
}

func NewVisionClassifier(client ChatCompletionCreator, model string, maxTokens int, temperature float64, maxPredictions int, logger *zap.Logger) *VisionClassifier {
	if maxPredictions <= 0 {
		maxPredictions = 5
	}
	return &VisionClassifier{
		client:         client,
		model:          model,
		maxTokens:      maxTokens,
		temperature:    temperature,
		maxPredictions: maxPredictions,
		logger:         logger,
	}
}

func (c *VisionClassifier) prompt() string {
	return fmt.Sprintf(`Identify the main object in this photo the way an ImageNet classifier would.
Return up to %d candidate labels in English, most likely first, each with a probability between 0 and 1.

Return the response as a JSON object with this structure:
{
    "predictions": [{"label": "label1", "probability": 0.9}, ...]
}`, c.maxPredictions)
}

func (c *VisionClassifier) Classify(ctx context.Context, image []byte, mime string) ([]models.Prediction, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: c.prompt(),
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    imageinput.DataURL(mime, image),
								Detail: openai.ImageURLDetailLow,
							},
						},
					},
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	predictions, err := c.parse(content)
	if err != nil {
		c.logger.Error("Failed to parse vision response",
			zap.Error(err),
			zap.String("response", content))
		return nil, err
	}

	c.logger.Debug("Image classified",
		zap.Int("predictions", len(predictions)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens))
	return predictions, nil
}

func (c *VisionClassifier) parse(content string) ([]models.Prediction, error) {
	// some models wrap JSON in a markdown fence even in JSON mode
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed visionResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid vision response: %w", err)
	}

	predictions := make([]models.Prediction, 0, len(parsed.Predictions))
	for _, p := range parsed.Predictions {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			continue
		}
		if p.Probability < 0 {
			p.Probability = 0
		} else if p.Probability > 1 {
			p.Probability = 1
		}
		predictions = append(predictions, p)
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})
	if len(predictions) > c.maxPredictions {
		predictions = predictions[:c.maxPredictions]
	}
	return predictions, nil
}
