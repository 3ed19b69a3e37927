package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/recycle-bot/internal/models"
	"go.uber.org/zap"
)

// --- Mock OpenAI Client ---
type mockOpenAIClient struct {
	mockResponse openai.ChatCompletionResponse
	mockError    error
	lastRequest  openai.ChatCompletionRequest
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastRequest = req
	if m.mockError != nil {
		return openai.ChatCompletionResponse{}, m.mockError
	}
	return m.mockResponse, nil
}

func responseWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

// --- End Mock OpenAI Client ---

func TestVisionClassifier_Classify_RanksAndTrims(t *testing.T) {
	mockClient := &mockOpenAIClient{
		mockResponse: responseWith(`{"predictions": [
			{"label": "water bottle", "probability": 0.2},
			{"label": "banana", "probability": 0.92},
			{"label": "  ", "probability": 0.5},
			{"label": "lemon", "probability": 1.4},
			{"label": "orange", "probability": -0.1}
		]}`),
	}
	clf := NewVisionClassifier(mockClient, "gpt-test", 200, 0, 3, zap.NewNop())

	preds, err := clf.Classify(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, []models.Prediction{
		{Label: "lemon", Probability: 1},
		{Label: "banana", Probability: 0.92},
		{Label: "water bottle", Probability: 0.2},
	}, preds)
}

func TestVisionClassifier_Classify_SendsImage(t *testing.T) {
	mockClient := &mockOpenAIClient{mockResponse: responseWith(`{"predictions": []}`)}
	clf := NewVisionClassifier(mockClient, "gpt-test", 200, 0.1, 5, zap.NewNop())

	preds, err := clf.Classify(context.Background(), []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)
	assert.Empty(t, preds)

	req := mockClient.lastRequest
	assert.Equal(t, "gpt-test", req.Model)
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].MultiContent, 2)
	part := req.Messages[0].MultiContent[1]
	require.NotNil(t, part.ImageURL)
	assert.Equal(t, "data:image/png;base64,AQID", part.ImageURL.URL)
}

func TestVisionClassifier_Classify_MarkdownFence(t *testing.T) {
	mockClient := &mockOpenAIClient{
		mockResponse: responseWith("```json\n{\"predictions\": [{\"label\": \"carton\", \"probability\": 0.6}]}\n```"),
	}
	clf := NewVisionClassifier(mockClient, "gpt-test", 200, 0, 5, zap.NewNop())

	preds, err := clf.Classify(context.Background(), []byte{1}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []models.Prediction{{Label: "carton", Probability: 0.6}}, preds)
}

func TestVisionClassifier_Classify_Errors(t *testing.T) {
	apiErr := errors.New("rate limited")
	clf := NewVisionClassifier(&mockOpenAIClient{mockError: apiErr}, "gpt-test", 200, 0, 5, zap.NewNop())
	_, err := clf.Classify(context.Background(), []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, apiErr)

	clf = NewVisionClassifier(&mockOpenAIClient{}, "gpt-test", 200, 0, 5, zap.NewNop())
	_, err = clf.Classify(context.Background(), []byte{1}, "image/jpeg")
	assert.ErrorIs(t, err, ErrNoChoices)

	clf = NewVisionClassifier(&mockOpenAIClient{mockResponse: responseWith("a banana, probably")}, "gpt-test", 200, 0, 5, zap.NewNop())
	_, err = clf.Classify(context.Background(), []byte{1}, "image/jpeg")
	assert.Error(t, err)
}
