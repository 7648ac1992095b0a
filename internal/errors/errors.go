package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the link-in-bio profile service

// ErrProfileNotFound is returned when no profile matches the given id or slug
var ErrProfileNotFound = errors.New("profile not found")

// ErrLinkNotFound is returned when a link index is out of range for a profile
var ErrLinkNotFound = errors.New("link not found")

// ErrInvalidSlug is returned when a slug fails format validation
var ErrInvalidSlug = errors.New("invalid slug")

// ErrSlugTaken is returned when the requested slug is already in use
var ErrSlugTaken = errors.New("slug already taken")

// ErrUnauthorized is returned when the edit token is missing or does not match
var ErrUnauthorized = errors.New("unauthorized")

// ErrIDGenerationFailed is returned when we can't generate a unique profile id
var ErrIDGenerationFailed = errors.New("failed to generate unique profile id")

// ErrClickRecordingFailed is returned when persisting a click audit row fails
type ErrClickRecordingFailed struct {
	ProfileID string
	Reason    string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for profile %s: %s", e.ProfileID, e.Reason)
}

// ErrLinkCheckFailed is returned when a link reachability check fails
type ErrLinkCheckFailed struct {
	URL    string
	Reason string
}

func (e ErrLinkCheckFailed) Error() string {
	return fmt.Sprintf("failed to check URL %s: %s", e.URL, e.Reason)
}
