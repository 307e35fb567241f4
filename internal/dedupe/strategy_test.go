package dedupe

import (
	"testing"
	"time"

	"casework-backend/internal/models"
)

func TestNameStrategyKey(t *testing.T) {
	tests := []struct {
		name   string
		client models.Client
		want   string
	}{
		{"plain", models.Client{FirstName: "Olena", LastName: "Kovalenko"}, "olena|kovalenko"},
		{"surrounding whitespace", models.Client{FirstName: " Olena ", LastName: "Kovalenko "}, "olena|kovalenko"},
		{"case folded", models.Client{FirstName: "OLENA", LastName: "kovalenko"}, "olena|kovalenko"},
		{"empty name never groups", models.Client{FirstName: "", LastName: ""}, ""},
		{"last name only", models.Client{LastName: "Kovalenko"}, "|kovalenko"},
	}

	var s NameStrategy
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Key(&tt.client); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNameStrategyIsDuplicate(t *testing.T) {
	var s NameStrategy

	a := &models.Client{FirstName: "Olena", LastName: "Kovalenko"}
	b := &models.Client{FirstName: " olena", LastName: "KOVALENKO"}
	c := &models.Client{FirstName: "Oksana", LastName: "Kovalenko"}
	empty := &models.Client{}

	if !s.IsDuplicate(a, b) {
		t.Error("expected a and b to match")
	}
	if s.IsDuplicate(a, c) {
		t.Error("expected a and c not to match")
	}
	if s.IsDuplicate(empty, empty) {
		t.Error("two empty names must never match")
	}
}

func TestChooseSurvivorOldestWins(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Client{ID: 10, CreatedAt: t1}
	newer := &models.Client{ID: 5, CreatedAt: t2}

	survivor, losers := ChooseSurvivor(PolicyOldestWins, []*models.Client{newer, older})
	if survivor.ID != 10 {
		t.Errorf("survivor = %d, want 10", survivor.ID)
	}
	if len(losers) != 1 || losers[0].ID != 5 {
		t.Errorf("losers = %v, want [5]", losers)
	}
}

func TestChooseSurvivorTieBreaksOnID(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &models.Client{ID: 2, CreatedAt: created}
	b := &models.Client{ID: 1, CreatedAt: created}

	survivor, _ := ChooseSurvivor(PolicyOldestWins, []*models.Client{a, b})
	if survivor.ID != 1 {
		t.Errorf("survivor = %d, want lower id 1", survivor.ID)
	}
}

func TestComputeBackfillNeverOverwrites(t *testing.T) {
	id1937 := 1937
	id2000 := 2000
	mail := "old@example.org"
	otherMail := "new@example.org"

	survivor := &models.Client{CehupoID: nil, Email: &mail}
	loser := &models.Client{CehupoID: &id1937, Email: &otherMail}

	bf := ComputeBackfill(survivor, loser)
	if bf.CehupoID == nil || *bf.CehupoID != 1937 {
		t.Errorf("expected cehupo_id 1937 to be backfilled, got %v", bf.CehupoID)
	}
	if bf.Email != nil {
		t.Error("populated survivor email must not be touched")
	}
	if len(bf.Fields) != 1 || bf.Fields[0] != "cehupo_id" {
		t.Errorf("Fields = %v, want [cehupo_id]", bf.Fields)
	}

	// Both populated: nothing to do.
	survivor2 := &models.Client{CehupoID: &id2000}
	bf2 := ComputeBackfill(survivor2, loser)
	if !bf2.Empty() {
		t.Errorf("expected empty backfill, got %v", bf2.Fields)
	}
}

func TestPartitionVisits(t *testing.T) {
	date := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}

	survivorVisits := []*models.Visit{
		{ID: 1, VisitDate: date("2024-03-01"), Subject: "Konzultace"},
	}
	loserVisits := []*models.Visit{
		{ID: 2, VisitDate: date("2024-03-01"), Subject: "Konzultace"}, // true duplicate
		{ID: 3, VisitDate: date("2024-03-01"), Subject: "Tlumočení"},
		{ID: 4, VisitDate: date("2024-04-15"), Subject: "Konzultace"},
	}

	move, discard := PartitionVisits(survivorVisits, loserVisits)
	if len(move) != 2 || move[0] != 3 || move[1] != 4 {
		t.Errorf("move = %v, want [3 4]", move)
	}
	if len(discard) != 1 || discard[0] != 2 {
		t.Errorf("discard = %v, want [2]", discard)
	}
}

func TestPartitionVisitsDuplicateWithinLoser(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	loserVisits := []*models.Visit{
		{ID: 2, VisitDate: date, Subject: "Konzultace"},
		{ID: 3, VisitDate: date, Subject: "Konzultace"},
	}

	move, discard := PartitionVisits(nil, loserVisits)
	if len(move) != 1 || move[0] != 2 {
		t.Errorf("move = %v, want [2]", move)
	}
	if len(discard) != 1 || discard[0] != 3 {
		t.Errorf("discard = %v, want [3]", discard)
	}
}
