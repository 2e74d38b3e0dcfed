package domain

import "time"

// HistoryEntry is one remembered search keyword with its last-used time.
type HistoryEntry struct {
	Keyword string    `json:"keyword"`
	When    time.Time `json:"time"`
}
