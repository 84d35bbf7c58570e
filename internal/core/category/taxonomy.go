// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

//go:embed taxonomy.yaml
var embeddedTaxonomy []byte

// Category is one taxonomy entry.
type Category struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Archive string `json:"archive"`
	Active  bool   `json:"active"`
}

type taxonomyFile struct {
	Archives []struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		Active     *bool  `yaml:"active"`
		Categories []struct {
			Code   string `yaml:"code"`
			Name   string `yaml:"name"`
			Active *bool  `yaml:"active"`
		} `yaml:"categories"`
	} `yaml:"archives"`
}

// Taxonomy is the immutable set of known classification codes.
type Taxonomy struct {
	byCode map[string]Category
	order  []string
}

// DefaultTaxonomy parses the taxonomy compiled into the binary.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(embeddedTaxonomy)
}

// ParseTaxonomy builds a [Taxonomy] from YAML. Entries are active unless the
// entry or its archive says otherwise.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("category: failed to parse taxonomy: %w", err)
	}

	taxonomy := &Taxonomy{byCode: make(map[string]Category)}
	for _, archive := range file.Archives {
		archiveActive := archive.Active == nil || *archive.Active

		for _, entry := range archive.Categories {
			if entry.Code == "" {
				return nil, fmt.Errorf("category: archive %q has an entry without a code", archive.ID)
			}
			if _, duplicate := taxonomy.byCode[entry.Code]; duplicate {
				return nil, fmt.Errorf("category: duplicate code %q", entry.Code)
			}

			taxonomy.byCode[entry.Code] = Category{
				Code:    entry.Code,
				Name:    entry.Name,
				Archive: archive.ID,
				Active:  archiveActive && (entry.Active == nil || *entry.Active),
			}
			taxonomy.order = append(taxonomy.order, entry.Code)
		}
	}

	return taxonomy, nil
}

// Lookup returns the entry for code.
func (taxonomy *Taxonomy) Lookup(code string) (Category, bool) {
	entry, ok := taxonomy.byCode[code]
	return entry, ok
}

// All returns every entry in declaration order.
func (taxonomy *Taxonomy) All() []Category {
	result := make([]Category, 0, len(taxonomy.order))
	for _, code := range taxonomy.order {
		result = append(result, taxonomy.byCode[code])
	}
	return result
}

// Validate rejects a target naming unknown or inactive codes, or no primary.
func (taxonomy *Taxonomy) Validate(target Target) error {
	var details []apperr.FieldError

	if target.Primary == "" {
		details = append(details, apperr.FieldError{Field: "primary_category", Message: "A primary category is required"})
	} else if message := taxonomy.problem(target.Primary); message != "" {
		details = append(details, apperr.FieldError{Field: "primary_category", Message: message})
	}

	for _, code := range target.Secondaries {
		if message := taxonomy.problem(code); message != "" {
			details = append(details, apperr.FieldError{Field: "secondary_categories", Message: message})
		}
	}

	if len(details) > 0 {
		return apperr.InvalidCategory(details...)
	}
	return nil
}

func (taxonomy *Taxonomy) problem(code string) string {
	entry, ok := taxonomy.byCode[code]
	if !ok {
		return fmt.Sprintf("Unknown category %q", code)
	}
	if !entry.Active {
		return fmt.Sprintf("Category %q is no longer accepting submissions", code)
	}
	return ""
}
