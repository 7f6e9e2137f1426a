// Package store persists shop snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/signshop/internal/shop"
)

type fileDoc struct {
	Shops []shop.Snapshot `json:"shops" yaml:"shops"`
}

// File stores shops in one YAML or JSON file, chosen by extension.
type File struct {
	path string
}

// NewFile stores shops at path. Paths ending in .json use JSON, others YAML.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) json() bool {
	return strings.EqualFold(filepath.Ext(f.path), ".json")
}

// Load reads the file. A missing file holds no shops.
func (f *File) Load(_ context.Context) ([]shop.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read shop file: %w", err)
	}
	var doc fileDoc
	if f.json() {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse shop file: %w", err)
	}
	return doc.Shops, nil
}

// Save replaces the file atomically.
func (f *File) Save(_ context.Context, shops []shop.Snapshot) error {
	doc := fileDoc{Shops: shops}
	if doc.Shops == nil {
		doc.Shops = []shop.Snapshot{}
	}
	var data []byte
	var err error
	if f.json() {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode shops: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create shop directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".shops-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write shops: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write shops: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace shop file: %w", err)
	}
	return nil
}
