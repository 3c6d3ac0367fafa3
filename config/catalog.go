package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/secondlabor/laborhub/types"
)

// defaultLaborTypes covers deployments that ship no catalog file.
var defaultLaborTypes = []types.LaborType{
	{ID: "studio-retouch", Name: "Studio Retouch", Description: "Photo cleanup and studio-grade retouching"},
	{ID: "copy-editing", Name: "Copy Editing", Description: "Editing and proofreading of written material"},
	{ID: "data-labeling", Name: "Data Labeling", Description: "Structured annotation of datasets"},
	{ID: "translation", Name: "Translation", Description: "Translation between natural languages"},
	{ID: "voice-acting", Name: "Voice Acting", Description: "Recorded voice performance"},
	{ID: "research-digest", Name: "Research Digest", Description: "Summarizing source material into briefs"},
}

// Catalog resolves labor-type input against the known set. Unmatched
// input synthesizes a custom type instead of failing.
type Catalog struct {
	entries []types.LaborType
}

func DefaultCatalog() *Catalog {
	return &Catalog{entries: append([]types.LaborType(nil), defaultLaborTypes...)}
}

// LoadCatalog reads a YAML catalog file. An empty path yields the
// built-in defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labor catalog %q: %w", path, err)
	}
	var doc struct {
		LaborTypes []types.LaborType `yaml:"laborTypes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode labor catalog %q: %w", path, err)
	}
	entries := make([]types.LaborType, 0, len(doc.LaborTypes))
	for _, lt := range doc.LaborTypes {
		lt.ID = strings.TrimSpace(lt.ID)
		lt.Name = strings.TrimSpace(lt.Name)
		if lt.ID == "" || lt.Name == "" {
			continue
		}
		entries = append(entries, lt)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("labor catalog %q contains no usable entries", path)
	}
	return &Catalog{entries: entries}, nil
}

// Entries returns the catalog in declaration order.
func (c *Catalog) Entries() []types.LaborType {
	return append([]types.LaborType(nil), c.entries...)
}

// Lookup finds a catalog entry by id.
func (c *Catalog) Lookup(id string) (types.LaborType, bool) {
	for _, lt := range c.entries {
		if lt.ID == id {
			return lt, true
		}
	}
	return types.LaborType{}, false
}

// Resolve maps free-form labor-type input to a catalog entry by id or
// display name, or synthesizes a custom type when nothing matches.
func (c *Catalog) Resolve(input string) types.LaborType {
	input = strings.TrimSpace(input)
	for _, lt := range c.entries {
		if strings.EqualFold(lt.ID, input) || strings.EqualFold(lt.Name, input) {
			return lt
		}
	}
	return SynthesizeCustom(input)
}

// SynthesizeCustom builds a custom labor type from free-form input.
// "pixel-art" becomes id "custom:pixel-art" with name "Pixel Art".
func SynthesizeCustom(input string) types.LaborType {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = strings.Join(strings.FieldsFunc(slug, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "-")
	if strings.HasPrefix(input, types.CustomLaborPrefix) {
		slug = strings.TrimPrefix(slug, types.CustomLaborPrefix)
	}
	display := cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	return types.LaborType{
		ID:   types.CustomLaborPrefix + slug,
		Name: display,
	}
}
