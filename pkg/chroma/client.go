package chroma

import (
	"context"
	"fmt"
	"log"
	"os"

	"propdesk-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
)

// ChromaClient stores property embeddings for similar-listing search.
type ChromaClient struct {
	client     chroma.Client
	embedFunc  *gemini.GeminiEmbeddingFunction
	config     *config.Config
	collection chroma.Collection // Pre-created collection
}

func NewChromaClient(cfg *config.Config) (*ChromaClient, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	// The Gemini embedding function reads its key from the environment
	if cfg.GeminiApiKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiApiKey)
	}

	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	var client chroma.Client
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	ctx := context.Background()
	collection, err := client.GetOrCreateCollection(
		ctx,
		"properties",
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("Initialized Chroma client with collection: properties")

	return &ChromaClient{
		client:     client,
		embedFunc:  embedFunc,
		config:     cfg,
		collection: collection,
	}, nil
}

// GetCollection returns the pre-created collection
func (c *ChromaClient) GetCollection() chroma.Collection {
	return c.collection
}

// UpsertPropertyEmbedding indexes a property's title and description,
// keyed by property id so re-indexing never duplicates.
func (c *ChromaClient) UpsertPropertyEmbedding(ctx context.Context, propertyID, title, description string, metadata map[string]interface{}) error {
	collection := c.GetCollection()

	text := fmt.Sprintf("Title: %s\n\nDescription: %s", title, description)
	if len(text) > 10000 {
		// Embedding models have token limits
		text = text[:10000]
	}

	meta := map[string]interface{}{"property_id": propertyID}
	for k, v := range metadata {
		meta[k] = v
	}
	docMeta, err := chroma.NewDocumentMetadataFromMap(meta)
	if err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}

	err = collection.Upsert(
		ctx,
		chroma.WithIDs(chroma.DocumentID(propertyID)),
		chroma.WithMetadatas(docMeta),
		chroma.WithTexts(text),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert property embedding: %w", err)
	}

	return nil
}

// SimilarProperties returns the ids of the properties whose embeddings
// are closest to the query text, with their distances.
func (c *ChromaClient) SimilarProperties(ctx context.Context, query string, limit int) ([]string, []float64, error) {
	collection := c.GetCollection()
	if collection == nil {
		return nil, nil, fmt.Errorf("collection is nil")
	}

	results, err := collection.Query(
		ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(limit),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if results == nil || results.CountGroups() == 0 {
		return []string{}, []float64{}, nil
	}

	idGroups := results.GetIDGroups()
	distanceGroups := results.GetDistancesGroups()

	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return []string{}, []float64{}, nil
	}

	propertyIDs := make([]string, 0, len(idGroups[0]))
	for _, id := range idGroups[0] {
		propertyIDs = append(propertyIDs, string(id))
	}

	distances := []float64{}
	if len(distanceGroups) > 0 && len(distanceGroups[0]) > 0 {
		for _, d := range distanceGroups[0] {
			distances = append(distances, float64(d))
		}
	}

	return propertyIDs, distances, nil
}

// DeletePropertyEmbedding removes a property from the index.
func (c *ChromaClient) DeletePropertyEmbedding(ctx context.Context, propertyID string) error {
	collection := c.GetCollection()

	err := collection.Delete(ctx, chroma.WithIDsDelete(chroma.DocumentID(propertyID)))
	if err != nil {
		return fmt.Errorf("failed to delete property embedding: %w", err)
	}

	return nil
}
