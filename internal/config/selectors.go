package config

import (
	"fmt"
	"log"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/scraper"
)

// LoadSelectors загружает дескрипторы полей из YAML файла
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close selectors file: %v", closeErr)
		}
	}()

	var selectors scraper.Selectors
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(&selectors); err != nil {
		return nil, fmt.Errorf("selectors %s: %w", filePath, err)
	}

	return &selectors, nil
}

// LoadCrowdcubeSelectors читает selectors_file из конфига
func (c *Config) LoadCrowdcubeSelectors() (*scraper.Selectors, error) {
	return LoadSelectors(c.SelectorsFile)
}

// validateSelectors: ключи из схемы записи, без повторов, тип соответствует полю
func validateSelectors(s *scraper.Selectors) error {
	if s.CardSelector == "" {
		return fmt.Errorf("card_selector is required")
	}
	if (s.Paginator.Selector == "") != (s.Paginator.CursorAttr == "") {
		return fmt.Errorf("paginator.selector and paginator.cursor_attr must be set together")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("fields are required")
	}

	seen := make(map[string]bool, len(s.Fields))
	for i, field := range s.Fields {
		if !lo.Contains(model.FieldKeys, field.Key) {
			return fmt.Errorf("fields[%d]: unknown key %q", i, field.Key)
		}
		if seen[field.Key] {
			return fmt.Errorf("fields[%d]: duplicate key %q", i, field.Key)
		}
		seen[field.Key] = true

		if field.Selector == "" {
			return fmt.Errorf("fields[%d]: selector is required", i)
		}
		switch field.Type {
		case scraper.FieldString, scraper.FieldFloat, scraper.FieldInt:
		default:
			return fmt.Errorf("fields[%d]: type must be string, float or int, got %q", i, field.Type)
		}
		if model.IsNumericKey(field.Key) != field.Type.IsNumeric() {
			return fmt.Errorf("fields[%d]: type %q does not fit key %q", i, field.Type, field.Key)
		}
	}

	return nil
}
