package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash-lite"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.075
	geminiOutputPricePerMillion = 0.30
)

const translatePrompt = `Translate these Arabic grocery catalog names (product, brand or category names) to short English display names.

Keep brand names transliterated rather than translated. Keep sizes and units (e.g. 5kg, 1L) as they are.

Names:
%s

Respond with a JSON object whose "translations" field maps each original name exactly as given to its English name.
Example: {"translations": {"أرز بسمتي 5 كجم": "Basmati Rice 5kg", "حليب المراعي": "Almarai Milk"}}

Respond ONLY with the JSON object.`

// GeminiTranslator translates names with Google's Gemini API.
type GeminiTranslator struct {
	client *genai.Client
}

func NewGeminiTranslator(ctx context.Context, apiKey string) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTranslator{client: client}, nil
}

func (g *GeminiTranslator) Translate(ctx context.Context, texts []string) (map[string]string, error) {
	if len(texts) == 0 {
		return map[string]string{}, nil
	}

	names, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode names: %w", err)
	}
	prompt := fmt.Sprintf(translatePrompt, names)

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	translations, err := parseTranslations(result.Text(), texts)
	if err != nil {
		return nil, err
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", geminiModel).
			Int("names", len(texts)).
			Int("translated", len(translations)).
			Int("inputTokens", int(result.UsageMetadata.PromptTokenCount)).
			Int("outputTokens", int(result.UsageMetadata.CandidatesTokenCount)).
			Float64("costUSD", calculateCost(int64(result.UsageMetadata.PromptTokenCount), int64(result.UsageMetadata.CandidatesTokenCount))).
			Msg("translation llm call")
	}
	return translations, nil
}

// parseTranslations keeps only translations for names that were asked for.
func parseTranslations(text string, asked []string) (map[string]string, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Translations map[string]string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse translation json: %w (response: %s)", err, jsonStr)
	}

	out := make(map[string]string, len(asked))
	for _, name := range asked {
		if en := strings.TrimSpace(resp.Translations[name]); en != "" {
			out[name] = en
		}
	}
	return out, nil
}

// extractJSONObject extracts a JSON object from text that may be wrapped in
// markdown code fences.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func calculateCost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1_000_000*geminiInputPricePerMillion +
		float64(outputTokens)/1_000_000*geminiOutputPricePerMillion
}
