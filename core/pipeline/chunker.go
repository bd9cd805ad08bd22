package pipeline

import (
	"fmt"
	"strings"
)

// ChunkFunc is a function that splits source text into retrievable passages
type ChunkFunc func(text string) ([]string, error)

// WordChunker creates a chunker that splits text into overlapping word
// windows. The overlap carries trailing context into the next chunk so
// passage boundaries don't cut answers in half.
func WordChunker(maxWords, overlap int) ChunkFunc {
	return func(text string) ([]string, error) {
		if maxWords <= 0 {
			return nil, fmt.Errorf("max words per chunk must be positive")
		}
		if overlap < 0 || overlap >= maxWords {
			return nil, fmt.Errorf("overlap must be in [0, maxWords)")
		}

		words := strings.Fields(text)
		if len(words) == 0 {
			return []string{}, nil
		}

		step := maxWords - overlap
		var chunks []string
		for start := 0; start < len(words); start += step {
			end := start + maxWords
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, strings.Join(words[start:end], " "))
			if end == len(words) {
				break
			}
		}

		return chunks, nil
	}
}

// ParagraphChunker creates a chunker that splits by blank-line separated
// paragraphs, the format of pre-chunked knowledge files.
func ParagraphChunker() ChunkFunc {
	return func(text string) ([]string, error) {
		paragraphs := strings.Split(text, "\n\n")

		var chunks []string
		for _, paragraph := range paragraphs {
			paragraph = strings.TrimSpace(paragraph)
			if paragraph == "" {
				continue
			}
			chunks = append(chunks, paragraph)
		}

		return chunks, nil
	}
}
