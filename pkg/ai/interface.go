package ai

import "context"

// PropertyBrief carries the structured facts the description generator
// writes marketing copy from.
type PropertyBrief struct {
	Title        string   `json:"title"`
	PropertyType string   `json:"property_type"`
	Purpose      string   `json:"purpose"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Size         float64  `json:"size"`
	Community    string   `json:"community"`
	Emirate      string   `json:"emirate"`
	Price        float64  `json:"price"`
	Amenities    []string `json:"amenities,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// LeadExtraction is the structured result of parsing a portal lead email
type LeadExtraction struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Message           string `json:"message"`
	PropertyReference string `json:"property_reference"`
}

// DescriptionService is the interface for AI text generation and lead parsing
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type DescriptionService interface {
	GenerateDescription(ctx context.Context, brief PropertyBrief) (string, error)
	ExtractLeadDetails(ctx context.Context, emailText string) (*LeadExtraction, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
