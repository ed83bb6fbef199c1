package booking

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/seatmap"
)

// PriceList holds the unit price of each zone.
type PriceList struct {
	Standard decimal.Decimal
	Premium  decimal.Decimal
}

// DefaultPrices are the box office prices: 15 standard, 20 premium.
func DefaultPrices() PriceList {
	return PriceList{
		Standard: decimal.NewFromInt(15),
		Premium:  decimal.NewFromInt(20),
	}
}

// UnitPrice returns the price of one seat in zone.
func (p PriceList) UnitPrice(zone model.Zone) decimal.Decimal {
	if zone == model.ZonePremium {
		return p.Premium
	}
	return p.Standard
}

// Total sums the unit price of every selected seat.  Seats missing from m
// contribute nothing.
func (p PriceList) Total(sel *Selection, m *seatmap.Map) decimal.Decimal {
	total := decimal.Zero
	for _, id := range sel.IDs() {
		if s, ok := m.Seat(id); ok {
			total = total.Add(p.UnitPrice(s.Zone))
		}
	}
	return total
}

// LineItems groups the selection per zone for showtimeID, standard first.
// The subtotal of every item is unit price times quantity, so the items
// always add up to Total.
func (p PriceList) LineItems(showtimeID uint64, sel *Selection, m *seatmap.Map) []model.LineItem {
	byZone := map[model.Zone]*model.LineItem{}
	for _, id := range sel.IDs() {
		s, ok := m.Seat(id)
		if !ok {
			continue
		}
		it, ok := byZone[s.Zone]
		if !ok {
			it = &model.LineItem{ShowtimeID: showtimeID, Zone: s.Zone, UnitPrice: p.UnitPrice(s.Zone)}
			byZone[s.Zone] = it
		}
		it.Quantity++
		it.Seats = append(it.Seats, s.Label())
	}
	items := make([]model.LineItem, 0, len(byZone))
	for _, z := range []model.Zone{model.ZoneStandard, model.ZonePremium} {
		if it, ok := byZone[z]; ok {
			it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			items = append(items, *it)
		}
	}
	return items
}

// SumItems adds up line item subtotals.
func SumItems(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
