package usecase

import (
	"GigaStonks/internal/domain/models"
	"GigaStonks/pkg/config"
)

// NewIndexBookFromConfig freezes the configured indices into an immutable book.
// Entry order is kept as written.
func NewIndexBookFromConfig(indices []config.IndexConfig) (*models.IndexBook, error) {
	regs := make([]*models.Registry, 0, len(indices))
	for _, ic := range indices {
		entries := make([]models.IndexEntry, 0, len(ic.Entries))
		for _, e := range ic.Entries {
			entries = append(entries, models.IndexEntry{Ticker: e.Ticker, DisplayName: e.Name})
		}
		regs = append(regs, models.NewRegistry(ic.Name, entries))
	}
	return models.NewIndexBook(regs...)
}
