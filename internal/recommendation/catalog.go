// Package recommendation turns a platform and a list of interests into follow suggestions.
package recommendation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Proton-105/socialpulse-onboarding/internal/domain"
)

// MinHandleLength is the shortest accepted recommended handle.
const MinHandleLength = 2

//go:embed catalog.yaml
var defaultCatalog []byte

// Candidate is one suggested account and why it was suggested.
type Candidate struct {
	Handle string `yaml:"handle"`
	Reason string `yaml:"reason"`
}

type platformEntry struct {
	Defaults  []Candidate            `yaml:"defaults"`
	Interests map[string][]Candidate `yaml:"interests"`
}

type catalogFile struct {
	Platforms map[string]platformEntry `yaml:"platforms"`
}

// Catalog is the platform × interest → candidates table. Interest keys are case-folded.
type Catalog struct {
	platforms map[domain.Platform]platformEntry
}

// DefaultCatalog parses the catalog shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file from disk.
func LoadCatalog(path string) (*Catalog, error) {
	// #nosec G304: the catalog path comes from deployment config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}

	return catalog, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := &Catalog{platforms: make(map[domain.Platform]platformEntry, len(file.Platforms))}

	for name, entry := range file.Platforms {
		platform := domain.Platform(name)
		if !platform.Valid() {
			return nil, fmt.Errorf("unknown platform %q", name)
		}
		if len(entry.Defaults) == 0 {
			return nil, fmt.Errorf("platform %q has no default candidates", name)
		}
		if err := validateCandidates(name, "defaults", entry.Defaults); err != nil {
			return nil, err
		}

		interests := make(map[string][]Candidate, len(entry.Interests))
		for interest, candidates := range entry.Interests {
			key := normalizeInterest(interest)
			if key == "" {
				return nil, fmt.Errorf("platform %q has an empty interest key", name)
			}
			if _, dup := interests[key]; dup {
				return nil, fmt.Errorf("platform %q lists interest %q twice", name, key)
			}
			if err := validateCandidates(name, interest, candidates); err != nil {
				return nil, err
			}
			interests[key] = candidates
		}
		entry.Interests = interests

		catalog.platforms[platform] = entry
	}

	for _, platform := range domain.Platforms {
		if _, ok := catalog.platforms[platform]; !ok {
			return nil, fmt.Errorf("platform %q is missing", platform)
		}
	}

	return catalog, nil
}

// Candidates returns the ordered candidates for an interest, or nil.
func (c *Catalog) Candidates(platform domain.Platform, interest string) []Candidate {
	if c == nil {
		return nil
	}
	return c.platforms[platform].Interests[normalizeInterest(interest)]
}

// Defaults returns the fallback candidates for a platform.
func (c *Catalog) Defaults(platform domain.Platform) []Candidate {
	if c == nil {
		return nil
	}
	return c.platforms[platform].Defaults
}

func validateCandidates(platform, list string, candidates []Candidate) error {
	for i, candidate := range candidates {
		if len(strings.TrimSpace(candidate.Handle)) < MinHandleLength {
			return fmt.Errorf("platform %q list %q entry %d: handle must be at least %d characters", platform, list, i, MinHandleLength)
		}
	}
	return nil
}

func normalizeInterest(interest string) string {
	return strings.ToLower(strings.TrimSpace(interest))
}
