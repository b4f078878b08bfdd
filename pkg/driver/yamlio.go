package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Intentionally generic yaml I/O shared by the three driver metadata
// formats (manifest, lockfile, module interface), so a typo in any of them
// fails the same way: strict decoding, unknown fields rejected.

// readStrictYAML decodes the file at path into out and returns the
// absolute path it read.
func readStrictYAML(path string, out any) (string, error) {
	if path == "" {
		return "", errors.New("driver: empty metadata path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("driver: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return "", fmt.Errorf("driver: %s: %w", abs, err)
	}
	return abs, nil
}

// writeYAML renders in to disk with the driver's house formatting.
func writeYAML(path string, in any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("driver: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("driver: encode %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
