package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/mikey/luca-assistant/internal/core"
)

// BedrockInterpreter is an implementation of the Interpreter interface using Amazon Bedrock
type BedrockInterpreter struct {
	client       *bedrockruntime.Client
	modelID      string
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

// NewBedrockInterpreter creates a new Bedrock interpreter
func NewBedrockInterpreter(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockInterpreter {
	return &BedrockInterpreter{
		client:      client,
		modelID:     modelID,
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
func (c *BedrockInterpreter) Interpret(ctx context.Context, utt core.Utterance) (*core.Intent, error) {
	prompt := fmt.Sprintf(c.promptFormat, languageName(utt.Language), utt.Text)

	responseText, err := c.invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed InterpretResponse
	if err := parseJSONResponse(responseText, &parsed); err != nil {
		return nil, err
	}

	return toIntent(parsed, utt), nil
}

// DraftReply writes a reply body for the given email
func (c *BedrockInterpreter) DraftReply(ctx context.Context, email *core.EmailMessage, lang core.Language) (string, error) {
	prompt := fmt.Sprintf(c.draftFormat, languageName(lang), email.From, email.Subject, email.Body)
	return c.invoke(ctx, prompt)
}

// invoke calls the Bedrock API with a model-specific payload and extracts the
// completion text
func (c *BedrockInterpreter) invoke(ctx context.Context, prompt string) (string, error) {
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	if genericResp.Output != "" {
		return genericResp.Output, nil
	}
	if genericResp.Text != "" {
		return genericResp.Text, nil
	}
	if genericResp.Response != "" {
		return genericResp.Response, nil
	}
	return string(resp.Body), nil
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

func (c *BedrockInterpreter) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

func (c *BedrockInterpreter) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
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
