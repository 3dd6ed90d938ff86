package announce

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

//go:embed messages.yaml
var defaultMessages []byte

// Entry is the text posted for one label.
type Entry struct {
	Message string   `yaml:"message"`
	Tags    []string `yaml:"tags"`
}

// Catalog maps labels to their posted text.
type Catalog map[types.Label]Entry

// DefaultCatalog is the embedded message set.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultMessages)
	if err != nil {
		panic(fmt.Sprintf("embedded messages.yaml: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog from path. An empty path yields the default.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes YAML keyed by label encoding.
func ParseCatalog(b []byte) (Catalog, error) {
	var raw map[string]Entry
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := make(Catalog, len(raw))
	for k, e := range raw {
		l, err := types.ParseLabel(k)
		if err != nil {
			return nil, fmt.Errorf("catalog key: %w", err)
		}
		if e.Message == "" {
			return nil, fmt.Errorf("catalog entry %s: empty message", l)
		}
		c[l] = e
	}
	return c, nil
}

// Compose builds the announcement for label with a fresh ID.
func (c Catalog) Compose(site string, label types.Label, ts time.Time) (Announcement, error) {
	e, ok := c[label]
	if !ok {
		return Announcement{}, fmt.Errorf("no message for label %s", label)
	}
	tags := append([]string(nil), e.Tags...)
	return Announcement{
		ID:        uuid.New(),
		Site:      site,
		Label:     label,
		Message:   e.Message,
		Tags:      tags,
		Timestamp: ts,
	}, nil
}
