package validate

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"clinic-engage/internal/config"
)

// Validator runs model-assisted validation with the heuristic checks
// as fallback. A zero API key disables the model entirely.
type Validator struct {
	client  openai.Client
	model   string
	enabled bool
}

func NewValidator(cfg *config.Config) *Validator {
	v := &Validator{model: cfg.OpenAIModel}
	if cfg.OpenAIAPIKey == "" {
		return v
	}
	v.client = openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	v.enabled = true
	return v
}

const nameSystemPrompt = `You validate customer names collected over WhatsApp in India.
Reply with JSON only, no prose: {"valid": true|false}.
A valid name is a plausible human name. Reject gibberish, greetings,
numbers, product names and keyboard mashing. Accept Indian names even
when they look unusual in English.`

type verdict struct {
	Valid bool `json:"valid"`
}

// CheckName asks the model first and falls back to the heuristics when
// the model is disabled, errors out, or returns something unparseable.
func (v *Validator) CheckName(ctx context.Context, name string) bool {
	if !v.enabled {
		return IsPlausibleName(name)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := v.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       v.model,
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(nameSystemPrompt),
			openai.UserMessage(name),
		},
	})
	if err != nil {
		log.Printf("Name validation model call failed, using heuristics: %v", err)
		return IsPlausibleName(name)
	}
	if len(resp.Choices) == 0 {
		return IsPlausibleName(name)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")

	var out verdict
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		log.Printf("Unparseable name validation verdict %q, using heuristics", content)
		return IsPlausibleName(name)
	}
	return out.Valid
}
