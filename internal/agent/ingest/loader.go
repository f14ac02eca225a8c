package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/agentic-rag/server/internal/agent/retriever"
	errx "github.com/agentic-rag/server/internal/core/error"
	logx "github.com/agentic-rag/server/pkg/logger"
)

type Config struct {
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
}

// Loader chunks local documents and imports them into the vector store
// so the retriever has something to answer from.
type Loader struct {
	client *weaviate.Client
	cfg    Config
}

func NewLoader(client *weaviate.Client, cfg Config) *Loader {
	return &Loader{client: client, cfg: cfg}
}

// EnsureSchema creates the document chunk class if it does not exist.
func (l *Loader) EnsureSchema(ctx context.Context) error {
	_, err := l.client.Schema().ClassGetter().WithClassName(retriever.DocumentClass).Do(ctx)
	if err == nil {
		logx.Debug().Str("class", retriever.DocumentClass).Msg("Schema already exists")
		return nil
	}

	class := &models.Class{
		Class:       retriever.DocumentClass,
		Description: "A chunk of an ingested document used for retrieval.",
		Vectorizer:  "text2vec-transformers",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
		},
	}
	if err := l.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return errx.WrapWeaviate(err)
	}
	logx.Info().Str("class", retriever.DocumentClass).Msg("Created schema")
	return nil
}

// LoadDirectory walks dir, chunks every .txt and .md file, and batch
// imports the chunks. Returns the number of chunks stored.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (int, error) {
	var objects []*models.Object

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}

		chunks := ChunkText(string(raw), l.cfg.ChunkSize, l.cfg.ChunkOverlap)
		for i, chunk := range chunks {
			objects = append(objects, &models.Object{
				Class: retriever.DocumentClass,
				Properties: map[string]interface{}{
					"content": chunk,
					"source":  fmt.Sprintf("%s#chunk-%d", rel, i),
				},
			})
		}
		logx.Debug().Str("file", rel).Int("chunks", len(chunks)).Msg("Chunked document")
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		logx.Warn().Str("dir", dir).Msg("No documents found to ingest")
		return 0, nil
	}

	resp, err := l.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, errx.WrapWeaviate(err)
	}

	stored := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			stored++
			continue
		}
		if item.Result != nil && item.Result.Errors != nil {
			for _, e := range item.Result.Errors.Error {
				logx.Warn().Str("error", e.Message).Msg("Batch item failed")
			}
		}
	}

	logx.Info().Str("dir", dir).Int("chunks", stored).Msg("Ingestion completed")
	return stored, nil
}

// ChunkText splits text into overlapping windows of roughly size runes.
// Overlap keeps context at chunk boundaries so retrieval does not lose
// sentences cut in half.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
