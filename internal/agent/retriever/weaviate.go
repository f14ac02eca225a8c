package retriever

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/agentic-rag/server/internal/agent/model"
	errx "github.com/agentic-rag/server/internal/core/error"
	logx "github.com/agentic-rag/server/pkg/logger"
)

// DocumentClass is the Weaviate class holding ingested document chunks.
const DocumentClass = "DocumentChunk"

const defaultK = 4

// WeaviateRetriever fetches document chunks by semantic similarity
// using Weaviate's nearText operator.
type WeaviateRetriever struct {
	client *weaviate.Client
}

var _ model.Retriever = (*WeaviateRetriever)(nil)

func NewWeaviateRetriever(client *weaviate.Client) *WeaviateRetriever {
	return &WeaviateRetriever{client: client}
}

type chunkHit struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	Additional struct {
		Certainty float64 `json:"certainty"`
		Distance  float64 `json:"distance"`
	} `json:"_additional"`
}

type getResponse struct {
	Get map[string][]chunkHit `json:"Get"`
}

// RetrieveSimilar returns up to k chunks most similar to the query.
func (r *WeaviateRetriever) RetrieveSimilar(ctx context.Context, query string, k int) ([]model.Document, error) {
	if query == "" {
		return nil, fmt.Errorf("retrieve: query is empty")
	}
	if k <= 0 {
		k = defaultK
	}

	nearText := r.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
			{Name: "distance"},
		}},
	}

	resp, err := r.client.GraphQL().Get().
		WithClassName(DocumentClass).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, errx.WrapWeaviate(err)
	}
	if len(resp.Errors) > 0 {
		return nil, errx.WrapWeaviate(fmt.Errorf("graphql: %s", resp.Errors[0].Message))
	}

	// The client returns untyped maps; round-trip through JSON to get
	// typed hits.
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, errx.WrapWeaviate(err)
	}
	var parsed getResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errx.WrapWeaviate(err)
	}

	hits := parsed.Get[DocumentClass]
	docs := make([]model.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, model.Document{
			Content: h.Content,
			Metadata: map[string]string{
				"source":    h.Source,
				"certainty": fmt.Sprintf("%.4f", h.Additional.Certainty),
			},
		})
	}

	logx.Debug().Int("requested", k).Int("returned", len(docs)).Msg("Retrieved similar chunks")
	return docs, nil
}
