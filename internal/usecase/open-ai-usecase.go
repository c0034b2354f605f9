package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iamvkosarev/docchat/config"
	"github.com/iamvkosarev/docchat/internal/model"
	"github.com/iamvkosarev/docchat/internal/observability"
	openai_tools "github.com/iamvkosarev/docchat/pkg/openai-tools"
	"github.com/sashabaranov/go-openai"
)

const (
	OpenAIRoleSystem    = "system"
	OpenAIRoleUser      = "user"
	OpenAIRoleAssistant = "assistant"
)

var ErrEmptyCompletion = errors.New("completion contains no choices")

const systemPromptFormat = `You are a senior technical support engineer. Your task is to provide accurate, context-specific guidance using ONLY the provided official documentation.

1. Respond exclusively using the documentation provided below. If information is missing, say so explicitly; never assume features, endpoints, or parameters beyond what is documented.
2. Begin with a direct yes/no confirmation when appropriate, follow with numbered steps or examples if actionable, and format code samples in markdown.
3. For ambiguous requests, ask clarifying questions before answering.
4. Maintain a professional yet approachable tone and warn about security implications for credentials and keys.

Provided documentation:
%s`

// OpenAIUsecase answers questions against the loaded documentation text.
type OpenAIUsecase struct {
	client       *openai.Client
	cfg          config.OpenAI
	systemPrompt string
}

func NewOpenAIUsecase(cfg config.OpenAI, documentation string) *OpenAIUsecase {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAIUsecase{
		client:       openai.NewClientWithConfig(clientConfig),
		cfg:          cfg,
		systemPrompt: fmt.Sprintf(systemPromptFormat, documentation),
	}
}

// Answer sends the question with the prior history to the model and returns
// the answer text. History is trimmed from the oldest side until it fits
// under the configured token cap; the system prompt and the question itself
// are never trimmed.
func (o *OpenAIUsecase) Answer(ctx context.Context, question string, history []model.Message) (string, error) {
	log := observability.LoggerFromContext(ctx)

	messageHistory := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, message := range history {
		messageHistory = append(
			messageHistory, openai.ChatCompletionMessage{
				Role:    parseMessageSourceToRole(message.Source),
				Content: message.Body,
			},
		)
	}

	trimHistory := func() {
		messageHistory = messageHistory[1:]
		log.Info("history trimmed due to token limit")
	}
	for len(messageHistory) > 0 {
		tokenCount, err := openai_tools.CountToken(messageHistory, o.cfg.OpenAIModel)
		if err != nil {
			log.Warn("failed to count tokens", "error", err)
			trimHistory()
			continue
		}
		if tokenCount < o.cfg.HistoryTokenCap {
			break
		}
		trimHistory()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(messageHistory)+2)
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    OpenAIRoleSystem,
			Content: o.systemPrompt,
		},
	)
	messages = append(messages, messageHistory...)
	messages = append(
		messages, openai.ChatCompletionMessage{
			Role:    OpenAIRoleUser,
			Content: question,
		},
	)

	req := openai.ChatCompletionRequest{
		Model:       o.cfg.OpenAIModel,
		Temperature: o.cfg.ModelTemperature,
		TopP:        1,
		N:           1,
		Messages:    messages,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func parseMessageSourceToRole(source model.MessageSource) string {
	switch source {
	case model.MessageSourceAssistant:
		return OpenAIRoleAssistant
	default:
		return OpenAIRoleUser
	}
}
