package caption

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const captionPrompt = "Describe this image in one short sentence suitable as an image search query. Reply with the sentence only."

// OpenAIClient captions images with a vision-capable chat model.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client; an empty baseURL keeps the library default.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (c *OpenAIClient) Caption(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to caption image: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCaption
	}

	caption := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if caption == "" {
		return "", ErrEmptyCaption
	}
	return caption, nil
}
