package nlp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// EmbeddingsProvider abstracts a text->embedding generator
// Implementations should return one embedding vector per input text.
type EmbeddingsProvider interface {
	EmbedTexts(texts []string) ([][]float32, error)
	ModelName() string
}

// NewCohereEmbeddings builds a Cohere-backed provider, or nil when no API key
// is configured (callers treat a nil provider as "embedding disabled").
func NewCohereEmbeddings(apiKey, preferredModel string) *CohereEmbeddings {
	if apiKey == "" {
		return nil
	}
	model := preferredModel
	if model == "" || !strings.HasPrefix(model, "embed-") {
		model = "embed-english-v3.0"
	}
	// Force HTTP/1.1 to avoid HTTP/2 protocol errors seen against the
	// Cohere endpoint
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereEmbeddings{client: client, model: model}
}

// CohereEmbeddings implements EmbeddingsProvider using the Cohere Embed API (v2)
// Docs: https://docs.cohere.com/reference/embed
type CohereEmbeddings struct {
	client *cohereclient.Client
	model  string
}

func (c *CohereEmbeddings) ModelName() string { return c.model }

func (c *CohereEmbeddings) EmbedTexts(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := c.client.V2.Embed(
		ctx,
		&cohere.V2EmbedRequest{
			Texts:          texts,
			Model:          c.model,
			InputType:      cohere.EmbedInputTypeSearchDocument,
			EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("cohere embed error: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned empty response")
	}

	raw := resp.Embeddings.Float
	if len(raw) != len(texts) {
		return nil, errors.New("embedding count mismatch")
	}

	out := make([][]float32, len(raw))
	for i, emb := range raw {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
