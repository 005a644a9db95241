package labels

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"brainzone/internal/models"
)

// Group is one category of structure names, in resource order.
type Group struct {
	Category string
	Names    []string
}

// Correspondence pairs long structure names with their acronyms. The
// two sequences are flattened from category groups and stay aligned by
// position.
type Correspondence struct {
	names    []string
	acronyms []string
}

// NewCorrespondence builds a correspondence from two parallel sequences.
// Names are NFC-normalised like lookup table names.
func NewCorrespondence(names, acronyms []string) (*Correspondence, error) {
	if len(names) != len(acronyms) {
		return nil, eris.Wrapf(models.ErrConfiguration,
			"labels: %d names but %d acronyms", len(names), len(acronyms))
	}
	return &Correspondence{
		names:    normalize(names),
		acronyms: normalize(acronyms),
	}, nil
}

func normalize(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = norm.NFC.String(s)
	}
	return out
}

// LoadCorrespondence reads the full-name and acronym group files.
func LoadCorrespondence(fullPath, shortPath string) (*Correspondence, error) {
	full, err := os.Open(fullPath)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "labels: open %s: %v", fullPath, err)
	}
	defer full.Close()

	short, err := os.Open(shortPath)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "labels: open %s: %v", shortPath, err)
	}
	defer short.Close()

	return ParseCorrespondence(full, short)
}

// ParseCorrespondence reads two category -> names mappings (YAML or
// JSON) and flattens them in document order. Every category must
// appear in both resources with the same number of entries.
func ParseCorrespondence(full, short io.Reader) (*Correspondence, error) {
	fullGroups, err := ParseGroups(full)
	if err != nil {
		return nil, eris.Wrap(err, "labels: full names")
	}
	shortGroups, err := ParseGroups(short)
	if err != nil {
		return nil, eris.Wrap(err, "labels: acronyms")
	}

	if len(fullGroups) != len(shortGroups) {
		return nil, eris.Wrapf(models.ErrConfiguration,
			"labels: %d name categories but %d acronym categories", len(fullGroups), len(shortGroups))
	}

	var names, acronyms []string
	for i, g := range fullGroups {
		s := shortGroups[i]
		if g.Category != s.Category {
			return nil, eris.Wrapf(models.ErrConfiguration,
				"labels: category %d is %q in names but %q in acronyms", i, g.Category, s.Category)
		}
		if len(g.Names) != len(s.Names) {
			return nil, eris.Wrapf(models.ErrConfiguration,
				"labels: category %q has %d names but %d acronyms", g.Category, len(g.Names), len(s.Names))
		}
		names = append(names, g.Names...)
		acronyms = append(acronyms, s.Names...)
	}

	if len(names) == 0 {
		return nil, eris.Wrap(models.ErrConfiguration, "labels: correspondence has no entries")
	}

	return &Correspondence{names: names, acronyms: acronyms}, nil
}

// ParseGroups decodes a category -> list mapping keeping key order.
// Map decoding would lose the order, so the document is walked as a
// yaml.Node tree.
func ParseGroups(r io.Reader) ([]Group, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, eris.Wrap(models.ErrConfiguration, "empty document")
		}
		return nil, eris.Wrapf(models.ErrConfiguration, "decode: %v", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, eris.Wrapf(models.ErrConfiguration, "line %d: expected a mapping of categories", root.Line)
	}

	groups := make([]Group, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			return nil, eris.Wrapf(models.ErrConfiguration,
				"line %d: category %q is not a list", value.Line, key.Value)
		}

		g := Group{Category: key.Value, Names: make([]string, 0, len(value.Content))}
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, eris.Wrapf(models.ErrConfiguration,
					"line %d: category %q holds a non-scalar entry", item.Line, key.Value)
			}
			g.Names = append(g.Names, norm.NFC.String(item.Value))
		}
		groups = append(groups, g)
	}

	return groups, nil
}

// Len returns the number of name/acronym pairs.
func (c *Correspondence) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Resolve returns the acronym paired with label, or label itself when
// no long name matches exactly or the acronym is blank. When a name is
// listed more than once the last pairing wins. Matching is done on the
// NFC form of label.
func (c *Correspondence) Resolve(label string) string {
	if c == nil {
		return label
	}
	key := norm.NFC.String(label)
	for i := len(c.names) - 1; i >= 0; i-- {
		if c.names[i] == key {
			if c.acronyms[i] == "" {
				return label
			}
			return c.acronyms[i]
		}
	}
	return label
}
