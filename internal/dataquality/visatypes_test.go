package dataquality

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeVisaType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"dočasná ochrana", VisaTemporaryProtection, true},
		{"Docasna ochrana", VisaTemporaryProtection, true},
		{"  DO  ", VisaTemporaryProtection, true},
		{"vízum dočasné ochrany", VisaTemporaryProtection, true},
		{"vízum za účelem strpění", VisaTolerated, true},
		{"Strpění", VisaTolerated, true},
		{"azylant", VisaAsylum, true},
		{"trvalý   pobyt", VisaPermanent, true},
		{"turistické vízum", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeVisaType(tt.raw)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

type fakeVisaStore struct {
	rows    []ClientVisa
	updated map[int]string
	failOn  map[int]bool
}

func (s *fakeVisaStore) VisaTypes(ctx context.Context) ([]ClientVisa, error) {
	return s.rows, nil
}

func (s *fakeVisaStore) UpdateVisaType(ctx context.Context, clientID int, visaType string) error {
	if s.failOn[clientID] {
		return fmt.Errorf("forced failure for client %d", clientID)
	}
	if s.updated == nil {
		s.updated = make(map[int]string)
	}
	s.updated[clientID] = visaType
	return nil
}

func TestVisaNormalizerRun(t *testing.T) {
	store := &fakeVisaStore{
		rows: []ClientVisa{
			{ClientID: 1, VisaType: "Docasna ochrana"},
			{ClientID: 2, VisaType: VisaTolerated}, // already canonical
			{ClientID: 3, VisaType: "diplomatické vízum"},
			{ClientID: 4, VisaType: "azylant"},
		},
	}

	summary, err := NewVisaNormalizer(store, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, summary.Scanned)
	require.Equal(t, 2, summary.Normalized)
	require.Equal(t, 1, summary.Unrecognized)
	require.Equal(t, 0, summary.Errors)

	require.Equal(t, VisaTemporaryProtection, store.updated[1])
	require.Equal(t, VisaAsylum, store.updated[4])
	// Canonical and unrecognized rows are never written.
	require.NotContains(t, store.updated, 2)
	require.NotContains(t, store.updated, 3)
}

func TestVisaNormalizerContinuesAfterWriteError(t *testing.T) {
	store := &fakeVisaStore{
		rows: []ClientVisa{
			{ClientID: 1, VisaType: "strpeni"},
			{ClientID: 2, VisaType: "trvaly pobyt"},
		},
		failOn: map[int]bool{1: true},
	}

	summary, err := NewVisaNormalizer(store, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Normalized)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, VisaPermanent, store.updated[2])
}
