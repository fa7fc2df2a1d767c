package invoicing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SupplyType decides how GST is split
type SupplyType string

const (
	// SupplyIntrastate splits tax equally into CGST and SGST
	SupplyIntrastate SupplyType = "INTRASTATE"
	// SupplyInterstate charges the whole tax as IGST
	SupplyInterstate SupplyType = "INTERSTATE"
)

// IsValid checks if the supply type is known
func (s SupplyType) IsValid() bool {
	return s == SupplyIntrastate || s == SupplyInterstate
}

func (s SupplyType) String() string {
	return string(s)
}

// SupplyTypeFor derives the supply type from the seller's and buyer's GST
// state codes. An unknown buyer state is treated as intrastate.
func SupplyTypeFor(companyStateCode, customerStateCode string) SupplyType {
	if customerStateCode == "" || customerStateCode == companyStateCode {
		return SupplyIntrastate
	}
	return SupplyInterstate
}

// TaxEntry is the tax contribution of one row or charge, or the merged
// result for one rate after grouping.
type TaxEntry struct {
	Rate    decimal.Decimal
	Taxable decimal.Decimal
	CGST    decimal.Decimal
	SGST    decimal.Decimal
	IGST    decimal.Decimal
}

// Total is the sum of the three components
func (e TaxEntry) Total() decimal.Decimal {
	return e.CGST.Add(e.SGST).Add(e.IGST)
}

// IsInterstate reports whether the entry is rendered as IGST
func (e TaxEntry) IsInterstate() bool {
	return !e.IGST.IsZero()
}

// SplitTax builds the entry for a tax amount at a rate
func SplitTax(rate, taxable, tax decimal.Decimal, supply SupplyType) TaxEntry {
	e := TaxEntry{
		Rate:    rate,
		Taxable: taxable,
		CGST:    decimal.Zero,
		SGST:    decimal.Zero,
		IGST:    decimal.Zero,
	}
	if supply == SupplyInterstate {
		e.IGST = tax
		return e
	}
	e.CGST = tax.Div(decimal.NewFromInt(2)).Round(amountPlaces)
	e.SGST = tax.Sub(e.CGST)
	return e
}

// GroupTaxes merges entries by rate, ordered by ascending rate. A group that
// has any IGST is rendered IGST-only: its CGST and SGST are dropped.
func GroupTaxes(entries []TaxEntry) []TaxEntry {
	byRate := make(map[string]*TaxEntry)
	keys := make([]string, 0)
	for _, e := range entries {
		key := e.Rate.Round(percentPlaces).String()
		g, ok := byRate[key]
		if !ok {
			g = &TaxEntry{
				Rate:    e.Rate.Round(percentPlaces),
				Taxable: decimal.Zero,
				CGST:    decimal.Zero,
				SGST:    decimal.Zero,
				IGST:    decimal.Zero,
			}
			byRate[key] = g
			keys = append(keys, key)
		}
		g.Taxable = g.Taxable.Add(e.Taxable)
		g.CGST = g.CGST.Add(e.CGST)
		g.SGST = g.SGST.Add(e.SGST)
		g.IGST = g.IGST.Add(e.IGST)
	}

	groups := make([]TaxEntry, 0, len(keys))
	for _, key := range keys {
		g := *byRate[key]
		if g.IsInterstate() {
			g.CGST = decimal.Zero
			g.SGST = decimal.Zero
		}
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Rate.LessThan(groups[j].Rate)
	})
	return groups
}

// scale multiplies every amount of the entry by factor
func (e TaxEntry) scale(factor decimal.Decimal) TaxEntry {
	e.Taxable = e.Taxable.Mul(factor).Round(amountPlaces)
	e.CGST = e.CGST.Mul(factor).Round(amountPlaces)
	e.SGST = e.SGST.Mul(factor).Round(amountPlaces)
	e.IGST = e.IGST.Mul(factor).Round(amountPlaces)
	return e
}
