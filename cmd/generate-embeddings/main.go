package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/yudhap/policyrag/core/pipeline"
	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/index"
	"github.com/yudhap/policyrag/model"
	"github.com/yudhap/policyrag/provider"
)

func main() {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	knowledgeDir := flag.String("knowledge", "data/_knowledge", "directory with per-category knowledge .txt files")
	indexDir := flag.String("out", "data/_indexes", "output directory for index files")
	providerName := flag.String("provider", "local", "embedding provider: local or openai")
	maxWords := flag.Int("max-words", 1200, "maximum words per chunk")
	overlap := flag.Int("overlap", 150, "words of overlap between chunks")
	flag.Parse()

	embedder, cleanup, err := newEmbedder(*providerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing embedder: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	chunker := pipeline.WordChunker(*maxWords, *overlap)
	ctx := context.Background()

	fmt.Printf("Generating embeddings with %s (dim=%d)\n\n", embedder.ModelInfo(), embedder.Dimension())

	generated := 0
	for _, category := range model.AllCategories() {
		sourcePath := filepath.Join(*knowledgeDir, string(category)+".txt")
		text, err := os.ReadFile(sourcePath)
		if os.IsNotExist(err) {
			fmt.Printf("- %s: no knowledge file, skipping\n", category)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", sourcePath, err)
			os.Exit(1)
		}

		passages, err := chunker(string(text))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error chunking %s: %v\n", sourcePath, err)
			os.Exit(1)
		}
		if len(passages) == 0 {
			fmt.Printf("- %s: empty knowledge file, skipping\n", category)
			continue
		}

		embeddings, err := embedder.EmbedBatch(ctx, passages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error embedding %s: %v\n", category, err)
			os.Exit(1)
		}

		data := &index.EmbeddingData{
			Category:   category,
			Passages:   passages,
			Embeddings: embeddings,
			ModelInfo:  embedder.ModelInfo(),
			Dimension:  embedder.Dimension(),
		}

		outPath := filepath.Join(*indexDir, index.IndexFileName(category))
		if err := index.WriteIndex(outPath, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
			os.Exit(1)
		}

		fmt.Printf("- %s: %d passages -> %s\n", category, len(passages), outPath)
		generated++
	}

	if generated == 0 {
		fmt.Fprintf(os.Stderr, "No knowledge files found in %s\n", *knowledgeDir)
		os.Exit(1)
	}

	fmt.Printf("\nDone, %d categories indexed.\n", generated)
}

// newEmbedder selects the batch-capable embedder variant at construction.
// The local model needs no API key; the openai variant reads the standard
// configuration from the environment.
func newEmbedder(name string) (provider.BatchEmbedder, func(), error) {
	switch name {
	case "local":
		embedder, err := provider.NewLocalEmbedder()
		if err != nil {
			return nil, nil, err
		}
		return embedder, func() { _ = embedder.Close() }, nil
	case "openai":
		config, err := helper.NewConfiguration()
		if err != nil {
			return nil, nil, err
		}
		gate := provider.NewGate(int64(config.MaxConcurrentCalls))
		embedder, err := provider.NewOpenAIProvider(config, gate)
		if err != nil {
			return nil, nil, err
		}
		return embedder, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q (use local or openai)", name)
	}
}
