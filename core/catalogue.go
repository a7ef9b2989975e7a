package core

import (
	"slices"
)

// Catalogue stores lots by number alongside their public entries.
// Not safe for concurrent use; House serialises access to it.
type Catalogue struct {
	lots    map[int]*Lot
	entries map[int]*CatalogueEntry
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		lots:    make(map[int]*Lot),
		entries: make(map[int]*CatalogueEntry),
	}
}

// Add creates a lot and its entry at StatusUnsold.
// Fails with ErrDuplicateLot if the number is already catalogued.
func (c *Catalogue) Add(lot *Lot) error {
	if _, exists := c.lots[lot.Number]; exists {
		return ErrDuplicateLot
	}
	c.lots[lot.Number] = lot
	c.entries[lot.Number] = &CatalogueEntry{
		Number:      lot.Number,
		Description: lot.Description,
		Status:      StatusUnsold,
	}
	return nil
}

// Lot returns the full record for number.
func (c *Catalogue) Lot(number int) (*Lot, bool) {
	lot, ok := c.lots[number]
	return lot, ok
}

// Status returns the current status of number.
func (c *Catalogue) Status(number int) (LotStatus, bool) {
	entry, ok := c.entries[number]
	if !ok {
		return "", false
	}
	return entry.Status, true
}

func (c *Catalogue) setStatus(number int, status LotStatus) {
	if entry, ok := c.entries[number]; ok {
		entry.Status = status
	}
}

// Entries returns a copy of every entry ordered by ascending lot number.
func (c *Catalogue) Entries() []CatalogueEntry {
	entries := make([]CatalogueEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, *entry)
	}
	slices.SortFunc(entries, func(a, b CatalogueEntry) int {
		return a.Number - b.Number
	})
	return entries
}
