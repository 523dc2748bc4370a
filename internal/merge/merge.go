// Package merge folds the partial records returned by source adapters into
// one canonical Snapshot.
//
// Precedence is positional: for every field the first record (in the order
// given) that defines it wins. Callers pass records in fallback-chain order,
// so completion order of concurrent fetches never affects the result.
package merge

import (
	"github.com/seenimoa/marketdata/pkg/models"
)

// Merge builds a Snapshot for sym from records ordered by priority. Nil
// records (failed adapters) are skipped. The result is a fresh value and the
// inputs are not modified.
func Merge(sym models.Symbol, records []*models.PartialRecord) *models.Snapshot {
	snap := &models.Snapshot{
		Symbol:  sym.Ticker,
		Market:  sym.Market,
		Sources: []string{},
	}

	for _, f := range models.NumberFields {
		if v, ok := first(records, f); ok {
			snap.SetNumber(f, v)
		}
	}
	for _, f := range models.TextFields {
		for _, r := range records {
			if v, ok := r.Text(f); ok {
				snap.SetText(f, v)
				break
			}
		}
	}

	applyAliases(snap)
	applyDerived(snap)

	if snap.Name == nil && sym.DisplayName() != "" {
		snap.SetText(models.FieldName, sym.DisplayName())
	}

	for _, r := range records {
		if r == nil || r.Len() == 0 {
			continue
		}
		snap.Sources = append(snap.Sources, r.Source)
		if r.FetchedAt.After(snap.FetchedAt) {
			snap.FetchedAt = r.FetchedAt
		}
	}

	snap.DataSource = models.SourceLive
	if snap.Price() > 0 {
		snap.DataQuality = models.QualityLive
	} else {
		snap.DataQuality = models.QualityUnavailable
	}
	return snap
}

func first(records []*models.PartialRecord, f models.Field) (float64, bool) {
	for _, r := range records {
		if v, ok := r.Number(f); ok {
			return v, true
		}
	}
	return 0, false
}

// applyAliases copies between fields that providers report under either name.
func applyAliases(snap *models.Snapshot) {
	switch {
	case snap.NetMargin == nil && snap.ProfitMargin != nil:
		snap.SetNumber(models.FieldNetMargin, *snap.ProfitMargin)
	case snap.ProfitMargin == nil && snap.NetMargin != nil:
		snap.SetNumber(models.FieldProfitMargin, *snap.NetMargin)
	}
}

// applyDerived fills fields that follow arithmetically from others. A value
// supplied by any source is never overwritten.
func applyDerived(snap *models.Snapshot) {
	price, prev := snap.LastTradedPrice, snap.PreviousClose

	if snap.OneDayChange == nil && price != nil && prev != nil {
		snap.SetNumber(models.FieldChange, *price-*prev)
	}
	if snap.OneDayChangePercent == nil && snap.OneDayChange != nil && prev != nil && *prev != 0 {
		snap.SetNumber(models.FieldChangePercent, *snap.OneDayChange / *prev * 100)
	}
	if snap.PBRatio == nil && price != nil && snap.BookValue != nil && *snap.BookValue > 0 {
		snap.SetNumber(models.FieldPB, *price / *snap.BookValue)
	}
}
