package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/model"
)

// IndexFileName returns the file name for a category's index, e.g. "sop.gob"
func IndexFileName(category model.Category) string {
	return string(category) + ".gob"
}

// WriteIndex writes embedding data to path atomically (write to .tmp, rename)
func WriteIndex(path string, data *EmbeddingData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return helper.NewError("create index directory", err)
	}

	file, err := os.Create(path + ".tmp")
	if err != nil {
		return helper.NewError("create index file", err)
	}

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		file.Close()
		return helper.NewError("encode index", err)
	}

	if err := file.Close(); err != nil {
		return helper.NewError("close index file", err)
	}

	return os.Rename(path+".tmp", path)
}

// ReadIndex reads embedding data from path
func ReadIndex(path string) (*EmbeddingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open index file", err)
	}
	defer file.Close()

	var data EmbeddingData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, helper.NewError("decode index", err)
	}

	return &data, nil
}

// LoadCorpus loads every category index found in dir. Categories without an
// index file are skipped; at least one index must exist.
func LoadCorpus(dir string) (*Corpus, error) {
	corpus := NewCorpus()

	for _, category := range model.AllCategories() {
		path := filepath.Join(dir, IndexFileName(category))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := ReadIndex(path)
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("load index for %v", category), err)
		}

		ci, err := NewCategoryIndex(data)
		if err != nil {
			return nil, err
		}

		if err := corpus.Add(ci); err != nil {
			return nil, helper.NewError(fmt.Sprintf("register index for %v", category), err)
		}
	}

	if len(corpus.Categories()) == 0 {
		return nil, helper.NewError("load corpus", fmt.Errorf("no index files found in %v", dir))
	}

	return corpus, nil
}
