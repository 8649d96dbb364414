package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/embark/internal/state"
)

// maxNameDistance is the largest normalised edit distance accepted as a
// name match.
const maxNameDistance = 0.4

// SubjectFinder resolves a user query to a subject.
type SubjectFinder struct {
	Loader *Loader
}

// Find matches query against subject ids and organization subject ids
// exactly (case-insensitive), then against names by edit distance.
func (f *SubjectFinder) Find(ctx context.Context, query string) (state.Subject, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return state.Subject{}, fmt.Errorf("%w: empty query", ErrSubjectNotFound)
	}
	subjects, err := f.Loader.ListSubjects(ctx)
	if err != nil {
		return state.Subject{}, err
	}
	if s, ok := exactSubject(subjects, q); ok {
		return s, nil
	}
	if s, ok := closestSubject(subjects, q); ok {
		return s, nil
	}
	return state.Subject{}, fmt.Errorf("%w: %q", ErrSubjectNotFound, query)
}

func exactSubject(subjects []state.Subject, q string) (state.Subject, bool) {
	for _, s := range subjects {
		if strings.EqualFold(s.ID, q) || strings.EqualFold(s.OrganizationSubjectID, q) {
			return s, true
		}
	}
	return state.Subject{}, false
}

func closestSubject(subjects []state.Subject, q string) (state.Subject, bool) {
	best, bestDist := -1, 0.0
	for i, s := range subjects {
		d := nameDistance(s.Name(), q)
		if d > maxNameDistance {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return state.Subject{}, false
	}
	return subjects[best], true
}

// nameDistance is the edit distance between a and b scaled to 0..1.
func nameDistance(a, b string) float64 {
	a, b = strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	maxlen := len(a)
	if len(b) > maxlen {
		maxlen = len(b)
	}
	if maxlen == 0 {
		return 1
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(maxlen)
}
