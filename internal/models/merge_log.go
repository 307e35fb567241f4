package models

import (
	"encoding/json"
	"time"
)

// MergeLog records one merge performed by the duplicate reconciliation
// engine. Because the loser row is hard-deleted, the log keeps a full JSON
// snapshot of it so a false-positive merge can be reviewed and repaired by
// hand.
type MergeLog struct {
	ID               int             `json:"id"`
	SurvivorID       int             `json:"survivor_id"`
	LoserID          int             `json:"loser_id"`
	LoserSnapshot    json.RawMessage `json:"loser_snapshot"`
	VisitsMoved      int             `json:"visits_moved"`
	VisitsDiscarded  int             `json:"visits_discarded"`
	FieldsBackfilled []string        `json:"fields_backfilled"`
	MatchKey         string          `json:"match_key"`
	Reviewed         bool            `json:"reviewed"`
	MergedAt         time.Time       `json:"merged_at"`
}
