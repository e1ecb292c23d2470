package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"propdesk-backend/pkg/gemini"
)

// GeminiProvider implements DescriptionService on top of the raw Gemini
// REST client, owning the real-estate prompts.
type GeminiProvider struct {
	client *gemini.GeminiService
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{client: gemini.NewGeminiService(apiKey)}
}

// GenerateDescription implements DescriptionService
func (g *GeminiProvider) GenerateDescription(ctx context.Context, brief PropertyBrief) (string, error) {
	text, err := g.client.Generate(ctx, descriptionPrompt(brief))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ExtractLeadDetails implements DescriptionService
func (g *GeminiProvider) ExtractLeadDetails(ctx context.Context, emailText string) (*LeadExtraction, error) {
	text, err := g.client.Generate(ctx, leadExtractionPrompt(emailText))
	if err != nil {
		return nil, err
	}

	jsonText := extractJSONObject(text)
	var lead LeadExtraction
	if err := json.Unmarshal([]byte(jsonText), &lead); err != nil {
		return nil, fmt.Errorf("failed to parse lead JSON: %v", err)
	}
	return &lead, nil
}

// descriptionPrompt pins the output to the portal's description window so
// generated copy survives the sync mapper without padding.
func descriptionPrompt(brief PropertyBrief) string {
	return fmt.Sprintf(`You are a real-estate copywriter for a UAE brokerage. Write a property listing description from the facts below.

RULES:
- 750 to 1500 characters, plain text, no markdown, no emojis.
- Open with the strongest selling point, close with a call to action.
- Mention the community and emirate naturally.
- Never invent facts that are not in the brief.

FACTS:
- Title: %s
- Type: %s, for %s
- Bedrooms: %d, Bathrooms: %d, Size: %.0f sqft
- Location: %s, %s
- Price: %.0f AED
- Amenities: %s
- Notes: %s

DESCRIPTION:`,
		brief.Title, brief.PropertyType, brief.Purpose,
		brief.Bedrooms, brief.Bathrooms, brief.Size,
		brief.Community, brief.Emirate, brief.Price,
		strings.Join(brief.Amenities, ", "), brief.Notes)
}

func leadExtractionPrompt(emailText string) string {
	return fmt.Sprintf(`You are an assistant for a real-estate CRM. Extract the enquirer's details from the lead email below.

Return ONLY a JSON object with these keys (empty string when absent):
{"name": "", "phone": "", "email": "", "message": "", "property_reference": ""}

property_reference is the listing reference the enquiry is about (e.g. "PD-1042"), if mentioned.

EMAIL:
%s

JSON OUTPUT:`, emailText)
}

// extractJSONObject trims markdown fences and surrounding prose around a
// JSON object in a model response.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
