package recommendation

import "github.com/Proton-105/socialpulse-onboarding/internal/domain"

const (
	// MaxPerInterest caps how many catalog entries a single interest contributes.
	MaxPerInterest = 2
	// MaxTotal caps the size of one generated set.
	MaxTotal = 5
)

// Source supplies candidates; *Catalog is the production implementation.
type Source interface {
	Candidates(platform domain.Platform, interest string) []Candidate
	Defaults(platform domain.Platform) []Candidate
}

// Generator produces deterministic recommendation sets from a Source.
type Generator struct {
	source Source
}

// NewGenerator builds a Generator over source.
func NewGenerator(source Source) *Generator {
	return &Generator{source: source}
}

// Generate returns at most MaxTotal candidates for the interests, in selection order.
// Each interest contributes the first MaxPerInterest entries of its list minus handles
// already chosen; when no interest matches, the platform defaults are used.
// Identical inputs always yield identical output.
func (g *Generator) Generate(platform domain.Platform, interests []string) []Candidate {
	if g == nil || g.source == nil {
		return nil
	}

	selected := make([]Candidate, 0, MaxTotal)
	seen := make(map[string]struct{}, MaxTotal)

	for _, interest := range interests {
		candidates := g.source.Candidates(platform, interest)
		if len(candidates) > MaxPerInterest {
			candidates = candidates[:MaxPerInterest]
		}

		for _, candidate := range candidates {
			if _, dup := seen[candidate.Handle]; dup {
				continue
			}
			seen[candidate.Handle] = struct{}{}
			selected = append(selected, candidate)
		}
	}

	if len(selected) == 0 {
		for _, candidate := range g.source.Defaults(platform) {
			if _, dup := seen[candidate.Handle]; dup {
				continue
			}
			seen[candidate.Handle] = struct{}{}
			selected = append(selected, candidate)
		}
	}

	if len(selected) > MaxTotal {
		selected = selected[:MaxTotal]
	}

	return selected
}
