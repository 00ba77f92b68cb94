package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// OpenAIInterpreter is an implementation of the Interpreter interface using OpenAI
type OpenAIInterpreter struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
	draftFormat  string
}

// InterpretResponse represents the structured response from the LLM
type InterpretResponse struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

// NewOpenAIInterpreter creates a new OpenAI interpreter
func NewOpenAIInterpreter(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *OpenAIInterpreter {
	client := openai.NewClient(apiKey)

	return &OpenAIInterpreter{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You are the intent classifier of a trilingual voice assistant (English, Modern Standard Arabic, Tunisian Derja).
Classify the following utterance into exactly one of these intents:
fetch_email, read_email, draft_reply, send_reply, organize_email, get_time, get_weather, tell_joke, calculate, get_quote, greet, help, goodbye, unknown

Respond with a JSON object containing:
- intent: string (one of the intents above)
- confidence: number between 0 and 1
- entities: object of string key-value pairs (e.g. city, operand1, operator, operand2)

Utterance (language %s):
%s

Respond only with the JSON object and nothing else.`,
		draftFormat: `You are a personal email assistant. Write a short, polite reply in %s to the following email. Respond with the reply body only, no subject line and no commentary.

From: %s
Subject: %s
Body:
%s`,
	}
}

// Interpret classifies an utterance the pattern rules could not resolve
func (c *OpenAIInterpreter) Interpret(ctx context.Context, utt core.Utterance) (*core.Intent, error) {
	prompt := fmt.Sprintf(c.promptFormat, languageName(utt.Language), utt.Text)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an intent classification system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

	var parsed InterpretResponse
	if err := parseJSONResponse(responseText, &parsed); err != nil {
		return nil, err
	}

	return toIntent(parsed, utt), nil
}

// DraftReply writes a reply body for the given email
func (c *OpenAIInterpreter) DraftReply(ctx context.Context, email *core.EmailMessage, lang core.Language) (string, error) {
	prompt := fmt.Sprintf(c.draftFormat, languageName(lang), email.From, email.Subject, email.Body)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseJSONResponse unmarshals the LLM output, extracting the JSON object
// from surrounding text if the model added any
func parseJSONResponse(responseText string, out *InterpretResponse) error {
	if err := json.Unmarshal([]byte(responseText), out); err != nil {
		jsonStart := 0
		jsonEnd := len(responseText)

		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart < jsonEnd {
			jsonStr := responseText[jsonStart:jsonEnd]
			if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
				return fmt.Errorf("failed to parse LLM response as JSON: %w", err)
			}
		} else {
			return fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
	}
	return nil
}

// toIntent validates the LLM verdict against the closed intent enumeration
func toIntent(parsed InterpretResponse, utt core.Utterance) *core.Intent {
	name := core.IntentUnknown
	for _, candidate := range core.AllIntents {
		if string(candidate) == parsed.Intent {
			name = candidate
			break
		}
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	entities := parsed.Entities
	if entities == nil {
		entities = map[string]string{}
	}

	return &core.Intent{
		Name:       name,
		Confidence: confidence,
		Entities:   entities,
		Utterance:  utt,
	}
}

func languageName(lang core.Language) string {
	switch lang {
	case core.LangArabic:
		return "Modern Standard Arabic"
	case core.LangTunisian:
		return "Tunisian Derja"
	default:
		return "English"
	}
}
