// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Artifact file names under <output_dir>/<product_id>/.
const (
	searchProfileFile = "search_profile.json"
	discoveryFile     = "discovery.json"
	candidatesFile    = "candidates.json"
)

// writeArtifact persists one JSON artifact for a product. Failures are
// logged, never propagated: a run that cannot write its audit trail still
// returns its results.
func (e *Engine) writeArtifact(productID, name string, v any, logger *zap.Logger) {
	if e.cfg.OutputDir == "" {
		return
	}
	path := filepath.Join(e.cfg.OutputDir, productID, name)
	if err := writeJSON(path, v); err != nil {
		logger.Warn("artifact write failed", zap.String("path", path), zap.Error(err))
	}
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
