package dedupe

import (
	"strings"

	"casework-backend/internal/models"
)

// MatchStrategy decides whether two client records represent the same
// physical person. The default name-only strategy reproduces the
// registry's historical behavior; it has no secondary disambiguator (birth
// date, external id), so two distinct people with the same name would be
// matched. That risk is why every merge is recorded for human review
// rather than performed silently.
type MatchStrategy interface {
	// Key returns a grouping key; clients with equal non-empty keys are
	// candidate duplicates.
	Key(c *models.Client) string
	// IsDuplicate re-validates a candidate pair against current data.
	IsDuplicate(a, b *models.Client) bool
	// Name identifies the strategy in logs and merge records.
	Name() string
}

// NameStrategy matches on trimmed, case-folded first and last name.
type NameStrategy struct{}

func (NameStrategy) Name() string { return "name" }

func (NameStrategy) Key(c *models.Client) string {
	first := strings.ToLower(strings.TrimSpace(c.FirstName))
	last := strings.ToLower(strings.TrimSpace(c.LastName))
	if first == "" && last == "" {
		// Never group records that carry no name at all.
		return ""
	}
	return first + "|" + last
}

func (s NameStrategy) IsDuplicate(a, b *models.Client) bool {
	ka, kb := s.Key(a), s.Key(b)
	return ka != "" && ka == kb
}

// MergePolicy names the rule that picks the surviving record of a
// duplicate group.
type MergePolicy string

// PolicyOldestWins keeps the earliest-created record: older records are
// the ones most likely to have accumulated service history.
const PolicyOldestWins MergePolicy = "oldest-wins"

// ChooseSurvivor applies the policy to a duplicate group and returns the
// survivor and the losers. Creation time decides; the lower id breaks
// ties.
func ChooseSurvivor(policy MergePolicy, group []*models.Client) (*models.Client, []*models.Client) {
	if len(group) == 0 {
		return nil, nil
	}

	survivor := group[0]
	for _, c := range group[1:] {
		if c.CreatedAt.Before(survivor.CreatedAt) ||
			(c.CreatedAt.Equal(survivor.CreatedAt) && c.ID < survivor.ID) {
			survivor = c
		}
	}

	losers := make([]*models.Client, 0, len(group)-1)
	for _, c := range group {
		if c.ID != survivor.ID {
			losers = append(losers, c)
		}
	}
	return survivor, losers
}
