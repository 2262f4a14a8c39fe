// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportFile = "history.yaml"

// ExportYAML writes up to limit recent runs as YAML. An empty path writes
// history.yaml next to the database. It returns the path written.
func (s *Store) ExportYAML(ctx context.Context, path string, limit int) (string, error) {
	runs, err := s.List(ctx, limit)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = filepath.Join(s.dir, exportFile)
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
