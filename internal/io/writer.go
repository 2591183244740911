package io

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/pkg/models"
)

// ResultWriter persists session results as batches complete
type ResultWriter struct {
	Config *config.IOConfig

	mu      sync.Mutex
	results []models.Result
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
	}
}

// WriteBatch records a finished batch. With no output file configured it
// does nothing. "json" rewrites the file with every result seen so far;
// "jsonl" appends one line per result.
func (w *ResultWriter) WriteBatch(batch models.Batch) error {
	if w.Config.OutputFile == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.Config.OutputFormat {
	case config.FormatJSON:
		w.results = append(w.results, batch.Results...)
		data, err := json.MarshalIndent(w.results, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(w.Config.OutputFile, data, 0644)

	case config.FormatJSONL:
		f, err := os.OpenFile(w.Config.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		enc := json.NewEncoder(f)
		for _, r := range batch.Results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", w.Config.OutputFormat)
	}
}
