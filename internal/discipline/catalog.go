package discipline

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog list names referenced by FieldDef.Options.
const (
	ListYesNo                = "yesNo"
	ListCategories           = "categories"
	ListSubCategories        = "subCategories"
	ListDesignations         = "designations"
	ListULBs                 = "ulbs"
	ListSeverities           = "severities"
	ListStatuses             = "statuses"
	ListEmploymentStatuses   = "employmentStatuses"
	ListCriminalCaseStatuses = "criminalCaseStatuses"
	ListWSDActions           = "wsdActions"
	ListChargesProved        = "chargesProved"
	ListInquiryActions       = "inquiryActions"
	ListDisagreedActions     = "disagreedActions"
	ListPunishments          = "punishments"
)

// Option is one allowed enum value.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// UnmarshalYAML accepts a bare scalar (value and label alike) or a mapping.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}
	type plain Option
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Label == "" {
		p.Label = p.Value
	}
	*o = Option(p)
	return nil
}

// Category is a case category and its sub-categories.
type Category struct {
	Name          string   `json:"name" yaml:"name"`
	SubCategories []string `json:"subCategories" yaml:"subCategories"`
}

// Catalog holds every enum option list.
type Catalog struct {
	Categories []Category          `json:"categories" yaml:"categories"`
	Lists      map[string][]Option `json:"lists" yaml:"lists"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, configErrorf("parse catalog: %v", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) check() error {
	if len(c.Categories) == 0 {
		return configErrorf("catalog has no categories")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		key := fold(cat.Name)
		if key == "" {
			return configErrorf("catalog category with empty name")
		}
		if seen[key] {
			return configErrorf("catalog category %q declared twice", cat.Name)
		}
		seen[key] = true
		if len(cat.SubCategories) == 0 {
			return configErrorf("catalog category %q has no sub-categories", cat.Name)
		}
	}
	for name, opts := range c.Lists {
		if name == ListCategories || name == ListSubCategories {
			return configErrorf("catalog list %q is derived from categories", name)
		}
		values := make(map[string]bool, len(opts))
		for _, o := range opts {
			if strings.TrimSpace(o.Value) == "" {
				return configErrorf("catalog list %q has an empty value", name)
			}
			if values[fold(o.Value)] {
				return configErrorf("catalog list %q repeats %q", name, o.Value)
			}
			values[fold(o.Value)] = true
		}
	}
	if _, ok := c.Lists[ListYesNo]; !ok {
		return configErrorf("catalog is missing list %q", ListYesNo)
	}
	return nil
}

// HasList reports whether name resolves to an option list.
func (c *Catalog) HasList(name string) bool {
	if name == ListCategories || name == ListSubCategories {
		return true
	}
	_, ok := c.Lists[name]
	return ok
}

// Options returns the options of a list. Category lists are derived from
// the category tree.
func (c *Catalog) Options(name string) []Option {
	switch name {
	case ListCategories:
		out := make([]Option, 0, len(c.Categories))
		for _, cat := range c.Categories {
			out = append(out, Option{Value: cat.Name, Label: cat.Name})
		}
		return out
	case ListSubCategories:
		var out []Option
		seen := map[string]bool{}
		for _, cat := range c.Categories {
			for _, sub := range cat.SubCategories {
				if !seen[sub] {
					seen[sub] = true
					out = append(out, Option{Value: sub, Label: sub})
				}
			}
		}
		return out
	}
	return c.Lists[name]
}

// Canonical maps v to the catalog spelling of the matching option value or
// label, ignoring case. ok is false when nothing matches.
func (c *Catalog) Canonical(list, v string) (string, bool) {
	key := fold(v)
	if key == "" {
		return "", false
	}
	for _, o := range c.Options(list) {
		if fold(o.Value) == key || fold(o.Label) == key {
			return o.Value, true
		}
	}
	return "", false
}

// Category looks a category up ignoring case.
func (c *Catalog) Category(name string) (Category, bool) {
	key := fold(name)
	for _, cat := range c.Categories {
		if fold(cat.Name) == key {
			return cat, true
		}
	}
	return Category{}, false
}

// ValidPair reports whether sub belongs to category.
func (c *Catalog) ValidPair(category, sub string) bool {
	cat, ok := c.Category(category)
	if !ok {
		return false
	}
	key := fold(sub)
	for _, s := range cat.SubCategories {
		if fold(s) == key {
			return true
		}
	}
	return false
}

func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(%d categories, %d lists)", len(c.Categories), len(c.Lists))
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
