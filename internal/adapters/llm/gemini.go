package llm

import (
	"context"
	"fmt"

	"github.com/thebenzza/nonnon/internal/domain"
	"github.com/thebenzza/nonnon/internal/observability"
	"google.golang.org/genai"
)

// GeminiClient implements domain.PlanInterpreter and domain.Advisor on
// Vertex AI (Gemini). One client serves both because the plan contract and
// the advice prompt share the model and transport.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates the Vertex-backed client.
func NewGeminiClient(ctx context.Context, projectID, location, modelName string) (*GeminiClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location are required for the Gemini client")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Interpret implements domain.PlanInterpreter. Exactly one attempt per
// call: retrying is the caller's policy, and no caller currently retries.
// Every failure mode collapses to ErrInterpreterUnavailable so nothing
// model-shaped leaks past this boundary.
func (g *GeminiClient) Interpret(ctx context.Context, text string, sctx domain.SessionContext) (*domain.Plan, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", sctx.UserID)

	contents := []*genai.Content{
		genai.NewContentFromText(BuildInterpreterInput(text, sctx), genai.RoleUser),
	}

	// Low temperature: the output is a machine contract, not prose.
	temp := float32(0.2)
	topP := float32(0.9)
	outputTokens := int32(1024)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(interpreterSystemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
		ResponseMIMEType:  "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		log.Error("gemini interpret call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInterpreterUnavailable, err)
	}

	raw := res.Text()
	if raw == "" {
		log.Error("gemini interpret returned empty text")
		return nil, fmt.Errorf("%w: empty response", domain.ErrInterpreterUnavailable)
	}

	plan, err := DecodePlan(raw)
	if err != nil {
		log.Error("gemini interpret output unusable", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInterpreterUnavailable, err)
	}
	return plan, nil
}

// Advise implements domain.Advisor for the free-form chat and health routes.
func (g *GeminiClient) Advise(ctx context.Context, text string, sctx domain.SessionContext, health bool) (string, error) {
	system := adviceSystemPrompt
	if health {
		system += "\n" + healthAdviceInstructions
	}

	contents := []*genai.Content{
		genai.NewContentFromText(BuildAdviceInput(text, sctx), genai.RoleUser),
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInterpreterUnavailable, err)
	}

	reply := res.Text()
	if reply == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrInterpreterUnavailable)
	}
	return reply, nil
}
