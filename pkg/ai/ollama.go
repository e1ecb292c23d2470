package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements DescriptionService using a local Ollama LLM
type OllamaService struct {
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
}

// NewOllamaServiceWithGetters creates a new Ollama service with dynamic
// getters so the settings API can repoint it at runtime
func NewOllamaServiceWithGetters(getBaseURL, getModel func() string) *OllamaService {
	return &OllamaService{
		getBaseURL: getBaseURL,
		getModel:   getModel,
	}
}

// GenerateDescription implements DescriptionService. Prompts are shared
// with the Gemini provider so copy style stays consistent across providers.
func (o *OllamaService) GenerateDescription(ctx context.Context, brief PropertyBrief) (string, error) {
	response, err := o.generate(ctx, descriptionPrompt(brief), 0.7, 600)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// ExtractLeadDetails implements DescriptionService for lead email parsing
func (o *OllamaService) ExtractLeadDetails(ctx context.Context, emailText string) (*LeadExtraction, error) {
	response, err := o.generate(ctx, leadExtractionPrompt(emailText), 0.2, 300)
	if err != nil {
		return nil, err
	}

	var lead LeadExtraction
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &lead); err != nil {
		return nil, fmt.Errorf("failed to parse lead JSON: %v", err)
	}
	return &lead, nil
}

func (o *OllamaService) generate(ctx context.Context, prompt string, temperature float64, numPredict int) (string, error) {
	url := o.getBaseURL() + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.getModel(),
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": temperature,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Response, nil
}
