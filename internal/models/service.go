package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Service catalog with prices in KSh. The price is copied onto the
// appointment at booking time; later catalog changes do not touch existing
// appointments.
var servicePrices = map[string]int64{
	"Dental Cleaning":          5000,
	"Tooth Filling":            10000,
	"Tooth Extraction":         15000,
	"Root Canal":               30000,
	"Teeth Whitening":          20000,
	"Dental Checkup":           3000,
	"Crown Installation":       25000,
	"Orthodontic Consultation": 8000,
}

// ServicePrice looks up the catalog price for a service.
func ServicePrice(name string) (decimal.Decimal, bool) {
	price, ok := servicePrices[name]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(price), true
}

// CatalogEntry is one service with its price, for the booking screen.
type CatalogEntry struct {
	Service string          `json:"service"`
	Price   decimal.Decimal `json:"price"`
}

// ServiceCatalog returns the catalog sorted by service name.
func ServiceCatalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(servicePrices))
	for name, price := range servicePrices {
		entries = append(entries, CatalogEntry{Service: name, Price: decimal.NewFromInt(price)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Service < entries[j].Service })
	return entries
}
