package dataquality

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Canonical visa-type codes. The registry historically stored whatever the
// intake worker typed; reports group by this column, so the values have to
// be collapsed onto a fixed set.
const (
	VisaTemporaryProtection = "dočasná ochrana"
	VisaTolerated           = "strpění"
	VisaAsylum              = "azyl"
	VisaLongTerm            = "dlouhodobý pobyt"
	VisaPermanent           = "trvalý pobyt"
)

// visaAliases maps folded free-text spellings onto canonical codes.
var visaAliases = map[string]string{
	"docasna ochrana":         VisaTemporaryProtection,
	"docasna":                 VisaTemporaryProtection,
	"do":                      VisaTemporaryProtection,
	"temporary protection":    VisaTemporaryProtection,
	"vizum docasne ochrany":   VisaTemporaryProtection,
	"strpeni":                 VisaTolerated,
	"vizum strpeni":           VisaTolerated,
	"vizum za ucelem strpeni": VisaTolerated,
	"azyl":                    VisaAsylum,
	"azylant":                 VisaAsylum,
	"mezinarodni ochrana":     VisaAsylum,
	"dlouhodoby pobyt":        VisaLongTerm,
	"dlouhodobe vizum":        VisaLongTerm,
	"trvaly pobyt":            VisaPermanent,
	"tp":                      VisaPermanent,
}

var diacriticFold = strings.NewReplacer(
	"á", "a", "č", "c", "ď", "d", "é", "e", "ě", "e", "í", "i", "ň", "n",
	"ó", "o", "ř", "r", "š", "s", "ť", "t", "ú", "u", "ů", "u", "ý", "y",
	"ž", "z",
)

// foldVisa lowercases, strips Czech diacritics and collapses whitespace so
// spelling variants land on the same alias key.
func foldVisa(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = diacriticFold.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeVisaType maps a free-text visa value onto its canonical code.
// The second return is false when the value is not recognized; such rows
// are left untouched for a human to look at.
func NormalizeVisaType(raw string) (string, bool) {
	canonical, ok := visaAliases[foldVisa(raw)]
	return canonical, ok
}

// ClientVisa is one registry row the job considers.
type ClientVisa struct {
	ClientID int
	VisaType string
}

// VisaStore is the registry access the job needs.
type VisaStore interface {
	// VisaTypes returns every client with a non-empty visa_type.
	VisaTypes(ctx context.Context) ([]ClientVisa, error)
	UpdateVisaType(ctx context.Context, clientID int, visaType string) error
}

// VisaSummary aggregates one normalization run.
type VisaSummary struct {
	Scanned      int `json:"scanned"`
	Normalized   int `json:"normalized"`
	Unrecognized int `json:"unrecognized"`
	Errors       int `json:"errors"`
}

// VisaNormalizer rewrites free-text visa types to canonical codes.
type VisaNormalizer struct {
	store  VisaStore
	logger *zap.Logger
}

func NewVisaNormalizer(store VisaStore, logger *zap.Logger) *VisaNormalizer {
	return &VisaNormalizer{store: store, logger: logger}
}

// Run scans the registry once. Rows already canonical are counted as
// scanned only; unrecognized values are logged and left as-is.
func (n *VisaNormalizer) Run(ctx context.Context) (*VisaSummary, error) {
	rows, err := n.store.VisaTypes(ctx)
	if err != nil {
		return nil, err
	}

	summary := &VisaSummary{}
	for _, row := range rows {
		summary.Scanned++

		canonical, ok := NormalizeVisaType(row.VisaType)
		if !ok {
			summary.Unrecognized++
			n.logger.Warn("unrecognized visa type",
				zap.Int("client_id", row.ClientID),
				zap.String("visa_type", row.VisaType))
			continue
		}
		if canonical == row.VisaType {
			continue
		}

		if err := n.store.UpdateVisaType(ctx, row.ClientID, canonical); err != nil {
			summary.Errors++
			n.logger.Error("visa update failed",
				zap.Int("client_id", row.ClientID),
				zap.Error(err))
			continue
		}
		summary.Normalized++
		n.logger.Info("normalized",
			zap.Int("client_id", row.ClientID),
			zap.String("from", row.VisaType),
			zap.String("to", canonical))
	}

	n.logger.Info("visa normalization done",
		zap.Int("scanned", summary.Scanned),
		zap.Int("normalized", summary.Normalized),
		zap.Int("unrecognized", summary.Unrecognized),
		zap.Int("errors", summary.Errors))
	return summary, nil
}
