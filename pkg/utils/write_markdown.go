package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// WriteMarkdown writes content to dir/fileName, creating dir when needed.
func WriteMarkdown(dir, fileName, content string) error {
	_, err := WriteFile(dir, fileName, []byte(content))
	return err
}

// WriteFile writes data to dir/fileName and returns the full path.
func WriteFile(dir, fileName string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	logrus.WithField("path", path).Debug("file written")
	return path, nil
}
