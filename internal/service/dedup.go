package service

import (
	"strings"

	"github.com/noah-isme/training-admin-api/internal/models"
)

type identityOwner struct {
	trainee models.Trainee
	row     int
}

type identityIndex struct {
	byEmail      map[string]identityOwner
	byExternalID map[string]identityOwner
}

func newIdentityIndex(size int) *identityIndex {
	return &identityIndex{
		byEmail:      make(map[string]identityOwner, size),
		byExternalID: make(map[string]identityOwner, size),
	}
}

// claim registers the keys of owner. Keys already held keep their first owner.
func (idx *identityIndex) claim(email, externalID string, owner identityOwner) {
	if key := normalizeEmail(email); key != "" {
		if _, seen := idx.byEmail[key]; !seen {
			idx.byEmail[key] = owner
		}
	}
	if key := strings.TrimSpace(externalID); key != "" {
		if _, seen := idx.byExternalID[key]; !seen {
			idx.byExternalID[key] = owner
		}
	}
}

func (idx *identityIndex) match(c models.ImportCandidate) (identityOwner, models.MatchField, bool) {
	if key := normalizeEmail(c.Email); key != "" {
		if owner, ok := idx.byEmail[key]; ok {
			return owner, models.MatchEmail, true
		}
	}
	if key := strings.TrimSpace(c.ExternalID); key != "" {
		if owner, ok := idx.byExternalID[key]; ok {
			return owner, models.MatchExternalID, true
		}
	}
	return identityOwner{}, "", false
}

// Classify splits candidates into new trainees and duplicates. A candidate is
// a duplicate when it shares an identifier with an existing trainee or with an
// earlier new candidate of the same batch. Email matches take precedence over
// external id matches, empty identifiers never match, and the first owner of
// a key wins. Every candidate lands in exactly one bucket. Nothing is written.
func Classify(candidates []models.ImportCandidate, existing []models.Trainee) models.Classification {
	idx := newIdentityIndex(len(existing) + len(candidates))
	for _, t := range existing {
		idx.claim(t.Email, t.ExternalID, identityOwner{trainee: t})
	}

	result := models.Classification{
		New:        make([]models.ImportCandidate, 0, len(candidates)),
		Duplicates: make([]models.DuplicateMatch, 0),
	}
	for _, c := range candidates {
		if owner, field, ok := idx.match(c); ok {
			result.Duplicates = append(result.Duplicates, models.DuplicateMatch{
				Candidate:  c,
				Existing:   owner.trainee,
				MatchedOn:  field,
				EarlierRow: owner.row,
			})
			continue
		}
		result.New = append(result.New, c)
		idx.claim(c.Email, c.ExternalID, identityOwner{trainee: c.Trainee(), row: c.Row})
	}
	return result
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// identityKeys collects the lookup keys used to find possible duplicates.
func identityKeys(candidates []models.ImportCandidate) (emails, externalIDs []string) {
	seenEmail := make(map[string]struct{}, len(candidates))
	seenID := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if key := normalizeEmail(c.Email); key != "" {
			if _, ok := seenEmail[key]; !ok {
				seenEmail[key] = struct{}{}
				emails = append(emails, key)
			}
		}
		if key := strings.TrimSpace(c.ExternalID); key != "" {
			if _, ok := seenID[key]; !ok {
				seenID[key] = struct{}{}
				externalIDs = append(externalIDs, key)
			}
		}
	}
	return emails, externalIDs
}
