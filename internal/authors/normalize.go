package authors

import (
	"fmt"
	"strings"

	"github.com/desertthunder/msx/internal/shared"
)

// Pair is one submitted author with their affiliation.
type Pair struct {
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
}

// Normalize trims and validates parallel name/affiliation values as they arrive from the form.
//
// Fully blank pairs are skipped. A half-filled pair, mismatched lengths, or no pairs at all
// are rejected with [shared.ErrInvalidInput].
func Normalize(names, affiliations []string) ([]Pair, error) {
	if len(names) != len(affiliations) {
		return nil, fmt.Errorf("%w: author names and affiliations must match", shared.ErrInvalidInput)
	}

	pairs := make([]Pair, 0, len(names))
	for i := range names {
		name := strings.TrimSpace(names[i])
		affiliation := strings.TrimSpace(affiliations[i])

		switch {
		case name == "" && affiliation == "":
			continue
		case name == "":
			return nil, fmt.Errorf("%w: each author needs a name", shared.ErrInvalidInput)
		case affiliation == "":
			return nil, fmt.Errorf("%w: each author needs an affiliation", shared.ErrInvalidInput)
		}

		pairs = append(pairs, Pair{Name: name, Affiliation: affiliation})
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: please provide at least one author", shared.ErrInvalidInput)
	}

	return pairs, nil
}

// JoinNames renders the author list as "A, B, C".
func JoinNames(pairs []Pair) string {
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// JoinAffiliations renders affiliations as "X; Y; Z".
func JoinAffiliations(pairs []Pair) string {
	affs := make([]string, len(pairs))
	for i, p := range pairs {
		affs[i] = p.Affiliation
	}
	return strings.Join(affs, "; ")
}
