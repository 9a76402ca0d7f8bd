package ui

import "sync/atomic"

// Stats counts what one harvest run did.
type Stats struct {
	PagesScanned  atomic.Int64
	NewChapters   atomic.Int64
	TitleUpgrades atomic.Int64
	TitlesSynced  atomic.Int64
	Fetched       atomic.Int64
	Failed        atomic.Int64
	BookChapters  atomic.Int64
	BookBytes     atomic.Int64
}
