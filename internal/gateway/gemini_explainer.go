package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"migration-reconciliation/internal/domain"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"

	noAnalysisText = "Unable to generate analysis."
	noSummaryText  = "Unable to generate summary."
)

// contentGenerator is the slice of the genai Models service the explainer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExplainer asks a Gemini model to explain discrepancies in prose.
type GeminiExplainer struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGeminiExplainer creates an explainer backed by the Gemini API.
func NewGeminiExplainer(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiExplainer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiExplainer(client.Models, model, logger), nil
}

func newGeminiExplainer(models contentGenerator, model string, logger *zap.Logger) *GeminiExplainer {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiExplainer{models: models, model: model, logger: logger}
}

// ExplainRecord explains why a legacy and new core record differ.
func (e *GeminiExplainer) ExplainRecord(ctx context.Context, oldRecord domain.Record, newRecord *domain.Record, reasons []domain.DiscrepancyReason) (string, error) {
	prompt, err := buildRecordPrompt(oldRecord, newRecord, reasons)
	if err != nil {
		return "", err
	}
	return e.generate(ctx, prompt, noAnalysisText)
}

// ExecutiveSummary writes a UAT summary from run statistics and sample mismatches.
func (e *GeminiExplainer) ExecutiveSummary(ctx context.Context, stats domain.ComparisonStats, samples []domain.ComparisonResult) (string, error) {
	prompt, err := buildSummaryPrompt(stats, samples)
	if err != nil {
		return "", err
	}
	return e.generate(ctx, prompt, noSummaryText)
}

func (e *GeminiExplainer) generate(ctx context.Context, prompt, fallback string) (string, error) {
	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		e.logger.Warn("gemini request failed", zap.String("model", e.model), zap.Error(err))
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fallback, nil
	}
	return text, nil
}

func buildRecordPrompt(oldRecord domain.Record, newRecord *domain.Record, reasons []domain.DiscrepancyReason) (string, error) {
	oldJSON, err := json.Marshal(oldRecord)
	if err != nil {
		return "", fmt.Errorf("failed to serialize legacy record: %w", err)
	}
	newJSON := []byte("null")
	if newRecord != nil {
		if newJSON, err = json.Marshal(newRecord); err != nil {
			return "", fmt.Errorf("failed to serialize new core record: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString("You are a Senior Core Banking Systems Analyst.\n")
	b.WriteString("Compare the following two records (Legacy Core vs. New Core) and explain the discrepancy.\n\n")
	fmt.Fprintf(&b, "Legacy Record: %s\n", oldJSON)
	fmt.Fprintf(&b, "New Core Record: %s\n\n", newJSON)
	b.WriteString("Known Discrepancy Dictionary:\n")
	for _, r := range reasons {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", r.Code, r.Label, r.Description)
	}
	b.WriteString("\nTask:\n")
	b.WriteString("1. Identify the specific fields that differ.\n")
	b.WriteString("2. Map the difference to a code from the Known Discrepancy Dictionary if one applies.\n")
	b.WriteString("3. If no known code fits, explain the functional business reason likely causing it (e.g. end-of-day cut-off change, fee calculation logic).\n")
	b.WriteString("4. Be concise and professional.\n")
	return b.String(), nil
}

func buildSummaryPrompt(stats domain.ComparisonStats, samples []domain.ComparisonResult) (string, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("failed to serialize stats: %w", err)
	}
	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		return "", fmt.Errorf("failed to serialize samples: %w", err)
	}

	var b strings.Builder
	b.WriteString("Generate an executive summary for a Core Banking Migration UAT report.\n\n")
	fmt.Fprintf(&b, "Statistics:\n%s\n\n", statsJSON)
	fmt.Fprintf(&b, "Sample of Discrepancies Found:\n%s\n\n", samplesJSON)
	b.WriteString("The summary should:\n")
	b.WriteString("1. Highlight the overall match rate.\n")
	b.WriteString("2. Identify the top risk areas based on the discrepancies.\n")
	b.WriteString("3. Provide a recommendation (Go/No-Go or Remediation needed).\n")
	b.WriteString("4. Use professional banking terminology.\n")
	return b.String(), nil
}
