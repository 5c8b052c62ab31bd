package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/engagelens/engage-api/internal/engagement"
)

// Metadata describes the exported model artifact. It ships next to the ONNX
// file and is written by the export script.
type Metadata struct {
	ModelName   string   `json:"model_name"`
	Description string   `json:"description"`
	InputShape  []int64  `json:"input_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// LoadMetadata reads and validates the metadata file. The class list must
// match the built-in engagement taxonomy in both size and order; a mismatch
// means the artifact was exported against a different training order and
// every score the service produced would be wrong.
func LoadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if len(meta.Classes) != engagement.NumClasses {
		return nil, fmt.Errorf("metadata lists %d classes, expected %d", len(meta.Classes), engagement.NumClasses)
	}
	for i, c := range engagement.Classes {
		if meta.Classes[i] != c.Label {
			return nil, fmt.Errorf("metadata class %d is %q, expected %q", i, meta.Classes[i], c.Label)
		}
	}

	return &meta, nil
}
