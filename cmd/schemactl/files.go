package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	docsvc "github.com/docschema/docschema/internal/document/service"
	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/pkg/logger"
)

// loadTemplate reads a template file. JSON is accepted too since it is valid YAML.
func loadTemplate(path string) (*template.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t template.Template
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	template.Normalize(&t)
	for _, w := range template.Lint(&t) {
		logger.Warnw("template lint", "file", path, "warning", w.String())
	}
	return &t, nil
}

func loadDocument(path string) (docsvc.Input, error) {
	var in docsvc.Input
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("parse document %s: %w", path, err)
	}
	return in, nil
}
