package openai_tools

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

// Per-message overhead of the chat format, see
// https://github.com/openai/openai-cookbook/blob/main/examples/How_to_count_tokens_with_tiktoken.ipynb
const (
	tokensPerMessage = 4
	tokensPerReply   = 3
)

func CountToken(messages []openai.ChatCompletionMessage, model string) (int, error) {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	tokenCount := tokensPerReply
	for _, message := range messages {
		tokenCount += tokensPerMessage
		tokenCount += len(tke.Encode(message.Content, nil, nil))
		tokenCount += len(tke.Encode(message.Role, nil, nil))
	}
	return tokenCount, nil
}
