package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/utils/logging"
)

// LLM asks a language model to pick one of the configured categories
type LLM struct {
	llmClient  gollem.LLMClient
	categories []Category
	fallback   types.CategoryID
}

var _ interfaces.Classifier = &LLM{}

type llmResponse struct {
	Category string `json:"category"`
}

// NewLLM creates an LLM classifier. Answers outside categories resolve to fallback.
func NewLLM(llmClient gollem.LLMClient, categories []Category, fallback types.CategoryID) (*LLM, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if err := validateCategories(categories); err != nil {
		return nil, err
	}
	return &LLM{
		llmClient:  llmClient,
		categories: categories,
		fallback:   fallback,
	}, nil
}

func (c *LLM) Classify(ctx context.Context, text string) (string, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(c.buildResponseSchema()),
		gollem.WithSessionSystemPrompt(c.buildSystemPrompt()),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(text))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("empty response from LLM")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return "", goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	label := types.CategoryID(strings.TrimSpace(strings.ToLower(parsed.Category)))
	for _, cat := range c.categories {
		if cat.ID == label {
			return label.String(), nil
		}
	}

	logging.From(ctx).Warn("LLM answered an unknown category",
		"category", parsed.Category,
		"fallback", c.fallback)
	return c.fallback.String(), nil
}

func (c *LLM) buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You classify complaints filed by users into exactly one category.\n")
	b.WriteString("Answer with the category ID only, chosen from this list:\n")
	for _, cat := range c.categories {
		if cat.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", cat.ID, cat.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", cat.ID)
		}
	}
	return b.String()
}

func (c *LLM) buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ComplaintClassification",
		Description: "Category assigned to the complaint",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"category": {
				Type:        gollem.TypeString,
				Description: "ID of the single most fitting category",
				Required:    true,
			},
		},
	}
}
