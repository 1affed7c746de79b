package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mmynk/kanji/internal/apperr"
)

// Generator is the part of *genai.GenerativeModel used by Gemini.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model to suggest venues and parses its JSON answer.
type Gemini struct {
	model      Generator
	maxResults int
	logger     *slog.Logger
}

// NewGeminiClient opens a genai client and returns a provider for modelName
// along with the client so the caller can close it.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, maxResults int, logger *slog.Logger) (*Gemini, *genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)

	return NewGemini(model, maxResults, logger), client, nil
}

func NewGemini(model Generator, maxResults int, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Gemini{model: model, maxResults: maxResults, logger: logger}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) prompt(q Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest up to %d restaurants or izakaya for a group event titled %q.\n", g.maxResults, q.Title)
	if q.PartySize > 0 {
		fmt.Fprintf(&b, "Party size: %d people.\n", q.PartySize)
	}
	if q.BudgetPerPerson != nil {
		fmt.Fprintf(&b, "Budget per person: %d JPY.\n", *q.BudgetPerPerson)
	}
	if q.LocationConstraint != "" {
		fmt.Fprintf(&b, "Location: %s.\n", q.LocationConstraint)
	}
	b.WriteString("Answer only with a JSON array of objects with the keys " +
		`"name", "address", "price_range", "rating" (number 0-5) and "url". ` +
		"Use an empty array if you have no suggestion.")
	return b.String()
}

func (g *Gemini) Recommend(ctx context.Context, q Query) ([]Candidate, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(g.prompt(q)))
	if err != nil {
		return nil, apperr.DependencyUnavailable(err, "gemini request failed")
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	candidates, err := parseCandidates(text.String())
	if err != nil {
		return nil, apperr.DependencyUnavailable(err, "gemini returned malformed response")
	}
	if len(candidates) > g.maxResults {
		candidates = candidates[:g.maxResults]
	}

	g.logger.Debug("Gemini suggestions parsed", "results", len(candidates))
	return candidates, nil
}

// parseCandidates decodes a JSON array of candidates, tolerating a
// surrounding markdown code fence. Entries without a name are dropped.
func parseCandidates(raw string) ([]Candidate, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var parsed []Candidate
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}

	out := parsed[:0]
	for _, c := range parsed {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
