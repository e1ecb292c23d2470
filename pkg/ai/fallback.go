package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService implements smart AI provider routing with fallback
// - Description generation: Ollama first (local, free), fallback to Gemini
// - Lead extraction: Gemini first (better structured output), fallback to Ollama
type FallbackService struct {
	gemini DescriptionService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini DescriptionService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// GenerateDescription tries Ollama first (free, local), falls back to Gemini
func (f *FallbackService) GenerateDescription(ctx context.Context, brief PropertyBrief) (string, error) {
	if f.ollama != nil {
		log.Println("[AI] Trying Ollama for description generation...")
		result, err := f.ollama.GenerateDescription(ctx, brief)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) {
			log.Printf("[AI] Ollama connection failed: %v, falling back to Gemini", err)
		} else {
			log.Printf("[AI] Ollama error: %v, falling back to Gemini", err)
		}
	}

	if f.gemini != nil {
		log.Println("[AI] Using Gemini for description generation...")
		result, err := f.gemini.GenerateDescription(ctx, brief)
		if err == nil {
			return result, nil
		}

		// Quota exhaustion might be temporary on the Ollama side too
		if isQuotaError(err) && f.ollama != nil {
			log.Printf("[AI] Gemini quota exhausted: %v, retrying Ollama", err)
			return f.ollama.GenerateDescription(ctx, brief)
		}

		return "", fmt.Errorf("gemini description generation failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available for description generation")
}

// ExtractLeadDetails tries Gemini first (better quality), falls back to Ollama
func (f *FallbackService) ExtractLeadDetails(ctx context.Context, emailText string) (*LeadExtraction, error) {
	if f.gemini != nil {
		log.Println("[AI] Trying Gemini for lead extraction...")
		result, err := f.gemini.ExtractLeadDetails(ctx, emailText)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		log.Println("[AI] Using Ollama for lead extraction...")
		result, err := f.ollama.ExtractLeadDetails(ctx, emailText)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.ExtractLeadDetails(ctx, emailText)
		}

		return nil, fmt.Errorf("ollama lead extraction failed: %w", err)
	}

	return nil, fmt.Errorf("no AI provider available for lead extraction")
}
