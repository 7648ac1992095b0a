package models

import "time"

// Click is an audit record of a single tracked click, stored in the database.
// The per-link counters inside the profile data blob remain what the API
// reports; these rows feed offline analytics (the CLI stats command).
type Click struct {
	// ID is the primary key with auto-increment functionality
	ID uint `gorm:"primaryKey"`

	// ProfileID references the profile whose link was clicked
	// - index: efficient per-profile click counting
	ProfileID string `gorm:"index;size:16"`

	// LinkIndex is the position of the clicked link inside the profile's link list
	LinkIndex int

	// Timestamp records the exact moment when the click occurred
	Timestamp time.Time

	// UserAgent stores the browser/client information from the HTTP request
	UserAgent string `gorm:"size:255"`

	// IPAddress stores the IP address of the visitor who clicked the link
	IPAddress string `gorm:"size:50"`
}

// ClickEvent represents a raw click event intended to be passed through channels.
// This lightweight struct is used for asynchronous processing between goroutines.
// It contains only the essential data needed to create a Click record later.
type ClickEvent struct {
	ProfileID string
	LinkIndex int
	Timestamp time.Time
	UserAgent string
	IPAddress string
}
