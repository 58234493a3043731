package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/spewlabs/explainer/internal/config"
	"github.com/spewlabs/explainer/internal/llm"
	"github.com/spewlabs/explainer/internal/logger"
)

// extractSchema constrains the parse model's reply.
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topic":             map[string]any{"type": []string{"string", "null"}},
		"celebrity_mention": map[string]any{"type": []string{"string", "null"}},
	},
	"required": []string{"topic", "celebrity_mention"},
}

// ParseResult is a successfully parsed request.
type ParseResult struct {
	Topic     string
	PersonaID string
}

// RequestParser extracts the topic and requested persona from mention
// text via a structured model call and matches the persona against the
// catalog.
type RequestParser struct {
	model     llm.Generator
	modelName string
	catalog   *config.Catalog
	log       logger.Logger
}

// NewRequestParser creates a RequestParser. log may be nil.
func NewRequestParser(model llm.Generator, modelName string, catalog *config.Catalog, log logger.Logger) *RequestParser {
	return &RequestParser{model: model, modelName: modelName, catalog: catalog, log: logger.OrNoOp(log)}
}

// Parse returns the parsed request, or a user-facing error message
// suitable for posting as a reply when the request cannot be honored.
// Exactly one of the two return values is meaningful.
func (p *RequestParser) Parse(ctx context.Context, text string) (*ParseResult, string) {
	if strings.TrimSpace(text) == "" {
		return nil, "Your mention was empty. Try: explain [topic] by [celebrity name]."
	}

	names := p.catalog.Names()
	systemPrompt := fmt.Sprintf(
		"You are an expert tweet analyst. Identify two things from the user's message: "+
			"the main topic to be explained, and the full name of the celebrity asked to explain it. "+
			"Supported celebrities: %s. "+
			"If no celebrity is clearly mentioned, return null for celebrity_mention. Do not infer one. "+
			"The topic should be a concise summary of what needs to be explained.",
		strings.Join(names, ", "),
	)

	var extracted struct {
		Topic            *string `json:"topic"`
		CelebrityMention *string `json:"celebrity_mention"`
	}
	err := llm.CompleteJSON(ctx, p.model, llm.Request{
		Model:        p.modelName,
		SystemPrompt: systemPrompt,
		Prompt:       fmt.Sprintf("Here's the message: %q", text),
		Schema:       extractSchema,
		SchemaName:   "mention_extract",
	}, &extracted)
	if err != nil {
		p.log.LogError(fmt.Sprintf("mention parse failed: %v", err))
		return nil, "Sorry, I couldn't understand your request. Please try again later."
	}

	if extracted.Topic == nil || strings.TrimSpace(*extracted.Topic) == "" {
		return nil, "I couldn't determine the topic from your message."
	}
	topic := strings.TrimSpace(*extracted.Topic)

	if extracted.CelebrityMention == nil || strings.TrimSpace(*extracted.CelebrityMention) == "" {
		return nil, "I couldn't identify a celebrity in your message."
	}

	personaID, ok := p.catalog.FindByName(*extracted.CelebrityMention)
	if !ok {
		return nil, fmt.Sprintf("I don't know how to impersonate %s. Supported: %s.",
			strings.TrimSpace(*extracted.CelebrityMention), strings.Join(names, ", "))
	}

	return &ParseResult{Topic: topic, PersonaID: personaID}, ""
}
