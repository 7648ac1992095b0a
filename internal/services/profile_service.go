// Package services contains the business logic layer for the link-in-bio application
package services

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/axellelanca/linkbio/internal/errors"
	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/repository"
)

// charset defines the character set used for generating profile ids and edit
// tokens. URL-safe alphanumerics plus '-' and '_', 64 possible characters.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

const (
	// idLength is the length of generated profile ids (64^8 combinations).
	idLength = 8
	// tokenLength is the length of generated edit tokens.
	tokenLength = 24
)

// slugPattern is the only accepted slug format, checked after stripping a
// leading '@'. Update deliberately skips this check (see UpdateProfile).
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,30}$`)

// ProfileService provides business logic methods for managing profiles.
// It acts as an intermediary between the HTTP handlers and the data repository.
type ProfileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates and returns a new instance of ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

// CreateProfileInput carries the caller-supplied fields for a new profile.
// Every field is optional; zero values fall back to the documented defaults.
type CreateProfileInput struct {
	Name          string
	Bio           string
	Photo         string
	Links         []models.Link
	Theme         string
	BgColor       string
	ButtonColor   string
	Template      string
	Slug          string
	Customization json.RawMessage
}

// UpdateProfileInput carries the fields of a partial profile update.
// String fields equal to "" and nil pointers are treated as "not supplied"
// and keep their stored value. A supplied links array fully replaces the
// stored one: existing per-link click counts survive only if the caller
// echoes them back.
type UpdateProfileInput struct {
	Name          string
	Bio           string
	Photo         string
	Links         *[]models.Link
	Theme         string
	BgColor       string
	ButtonColor   string
	Template      string
	Slug          string
	Customization json.RawMessage
}

// CreateResult is what a successful profile creation returns to the caller.
type CreateResult struct {
	ID        string
	EditToken string
	URL       string
}

// ProfileView is the public projection of a profile row. It never carries
// the edit token.
type ProfileView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Bio           string          `json:"bio"`
	Photo         string          `json:"photo"`
	Links         []models.Link   `json:"links"`
	Theme         string          `json:"theme"`
	BgColor       string          `json:"bgColor"`
	ButtonColor   string          `json:"buttonColor"`
	Template      string          `json:"template"`
	Customization json.RawMessage `json:"customization"`
	Views         int64           `json:"views"`
	CreatedAt     int64           `json:"created_at"`
}

// Analytics aggregates the counters the profile owner can read with the
// edit token: total views and per-link click counts.
type Analytics struct {
	Views int64
	Links []models.Link
}

// GenerateRandomString generates a cryptographically secure random string of
// the given length over the id/token charset.
func (s *ProfileService) GenerateRandomString(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		// Use crypto/rand for cryptographically secure random numbers
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// NormalizeSlug strips a leading '@' and surrounding whitespace.
// Both create and update run this; only create validates the result.
func NormalizeSlug(slug string) string {
	return strings.TrimSpace(strings.TrimPrefix(slug, "@"))
}

// CreateProfile creates a new profile with a fresh id and edit token.
// If a slug is requested it is validated and checked for uniqueness first;
// the row is inserted without the slug, which is then set in a separate
// best-effort statement so a slug failure never loses the profile.
func (s *ProfileService) CreateProfile(in CreateProfileInput) (*CreateResult, error) {
	slug := ""
	if in.Slug != "" {
		slug = NormalizeSlug(in.Slug)
		if !slugPattern.MatchString(slug) {
			return nil, apperrors.ErrInvalidSlug
		}
		// Uniqueness check. Not atomic with the insert below: two concurrent
		// creates racing for the same slug can both pass, and the loser hits
		// the unique constraint when its slug is set.
		_, err := s.profileRepo.GetProfileBySlug(slug)
		if err == nil {
			return nil, apperrors.ErrSlugTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error checking slug uniqueness: %w", err)
		}
	}

	id, err := s.generateUniqueID()
	if err != nil {
		return nil, err
	}

	editToken, err := s.GenerateRandomString(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate edit token: %w", err)
	}

	data, err := models.EncodeLinks(in.Links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode links: %w", err)
	}

	customization := "{}"
	if len(in.Customization) > 0 {
		customization = string(in.Customization)
	}

	profile := &models.Profile{
		ID:            id,
		EditToken:     editToken,
		Name:          in.Name,
		Bio:           in.Bio,
		Photo:         in.Photo,
		Data:          data,
		Theme:         withDefault(in.Theme, "dark"),
		BgColor:       withDefault(in.BgColor, "#1a1a1a"),
		ButtonColor:   withDefault(in.ButtonColor, "#3b82f6"),
		Template:      withDefault(in.Template, "minimal"),
		Views:         0,
		Customization: customization,
		CreatedAt:     time.Now().UnixMilli(),
	}

	if err := s.profileRepo.CreateProfile(profile); err != nil {
		return nil, err
	}

	url := "/p/" + id
	if slug != "" {
		// Best-effort: the profile already exists, so a failure here only
		// downgrades the public URL to the id form.
		if err := s.profileRepo.SetSlug(id, slug); err != nil {
			log.Printf("Failed to set slug '%s' on profile %s: %v", slug, id, err)
		} else {
			url = "/@" + slug
		}
	}

	return &CreateResult{ID: id, EditToken: editToken, URL: url}, nil
}

// generateUniqueID generates a profile id with collision detection and retry.
func (s *ProfileService) generateUniqueID() (string, error) {
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		id, err := s.GenerateRandomString(idLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate profile id: %w", err)
		}

		_, err = s.profileRepo.GetProfileByID(id)
		if err != nil {
			// 'record not found' means the id is free and we can use it
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return id, nil
			}
			return "", fmt.Errorf("database error checking id uniqueness: %w", err)
		}

		log.Printf("Profile id '%s' already exists, retrying generation (%d/%d)...", id, i+1, maxRetries)
	}

	return "", apperrors.ErrIDGenerationFailed
}

// GetProfileByID returns the public projection of a profile and bumps its
// view counter. The increment is best-effort: a failure is logged and the
// read still succeeds.
func (s *ProfileService) GetProfileByID(id string) (*ProfileView, error) {
	profile, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile %s: %w", id, err)
	}
	return s.viewWithIncrement(profile), nil
}

// GetProfileBySlug is GetProfileByID for slug lookups.
func (s *ProfileService) GetProfileBySlug(slug string) (*ProfileView, error) {
	profile, err := s.profileRepo.GetProfileBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile by slug %s: %w", slug, err)
	}
	return s.viewWithIncrement(profile), nil
}

// viewWithIncrement applies the best-effort view increment and builds the
// public projection, reporting the post-increment count when the bump stuck.
func (s *ProfileService) viewWithIncrement(profile *models.Profile) *ProfileView {
	views := profile.Views
	if err := s.profileRepo.IncrementViews(profile.ID); err != nil {
		log.Printf("Failed to increment views for profile %s: %v", profile.ID, err)
	} else {
		views++
	}

	return &ProfileView{
		ID:            profile.ID,
		Name:          profile.Name,
		Bio:           profile.Bio,
		Photo:         profile.Photo,
		Links:         models.DecodeLinks(profile.Data),
		Theme:         withDefault(profile.Theme, "dark"),
		BgColor:       withDefault(profile.BgColor, "#1a1a1a"),
		ButtonColor:   withDefault(profile.ButtonColor, "#3b82f6"),
		Template:      withDefault(profile.Template, "minimal"),
		Customization: models.DecodeCustomization(profile.Customization),
		Views:         views,
		CreatedAt:     profile.CreatedAt,
	}
}

// UpdateProfile applies a partial update after checking the edit token.
// A missing token is rejected before the row is even looked up. The slug is
// normalized but, unlike create, neither re-validated nor re-checked for
// uniqueness; a duplicate surfaces as a store error.
func (s *ProfileService) UpdateProfile(id string, editToken string, in UpdateProfileInput) error {
	if editToken == "" {
		return apperrors.ErrUnauthorized
	}

	profile, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return fmt.Errorf("failed to load profile %s: %w", id, err)
	}
	if profile.EditToken != editToken {
		return apperrors.ErrUnauthorized
	}

	fields := map[string]interface{}{}
	putIfSet(fields, "name", in.Name)
	putIfSet(fields, "bio", in.Bio)
	putIfSet(fields, "photo", in.Photo)
	putIfSet(fields, "theme", in.Theme)
	putIfSet(fields, "bgColor", in.BgColor)
	putIfSet(fields, "buttonColor", in.ButtonColor)
	putIfSet(fields, "template", in.Template)

	if slug := NormalizeSlug(in.Slug); slug != "" {
		fields["slug"] = slug
	}

	if in.Links != nil {
		data, err := models.EncodeLinks(*in.Links)
		if err != nil {
			return fmt.Errorf("failed to encode links: %w", err)
		}
		fields["data"] = data
	}

	if len(in.Customization) > 0 && string(in.Customization) != "null" {
		fields["customization"] = string(in.Customization)
	}

	return s.profileRepo.UpdateFields(id, fields)
}

// RecordClick increments the click counter of the link at the given index
// and returns its destination URL. The persist of the updated links blob is
// best-effort: the caller redirects even when it fails. This read-modify-write
// is not atomic, so concurrent clicks on one profile can lose counts.
func (s *ProfileService) RecordClick(id string, linkIndex int) (string, error) {
	profile, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrProfileNotFound
		}
		return "", fmt.Errorf("failed to load profile %s: %w", id, err)
	}

	links := models.DecodeLinks(profile.Data)
	if linkIndex < 0 || linkIndex >= len(links) {
		return "", apperrors.ErrLinkNotFound
	}

	links[linkIndex].Clicks++

	data, err := models.EncodeLinks(links)
	if err != nil {
		log.Printf("Failed to encode links for profile %s: %v", id, err)
		return links[linkIndex].URL, nil
	}
	if err := s.profileRepo.UpdateData(id, data); err != nil {
		log.Printf("Failed to persist click for profile %s: %v", id, err)
	}

	return links[linkIndex].URL, nil
}

// GetAnalytics returns the view total and per-link click counts.
// The edit token is the sole credential; it must match exactly.
func (s *ProfileService) GetAnalytics(id string, token string) (*Analytics, error) {
	profile, err := s.profileRepo.GetProfileByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile %s: %w", id, err)
	}

	if token == "" || token != profile.EditToken {
		return nil, apperrors.ErrUnauthorized
	}

	return &Analytics{
		Views: profile.Views,
		Links: models.DecodeLinks(profile.Data),
	}, nil
}

// withDefault returns fallback when value is empty, covering rows created
// before a column (or its default) existed.
func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// putIfSet adds a column to the partial-update map only when the caller
// actually supplied a value; empty strings mean "leave unchanged".
func putIfSet(fields map[string]interface{}, column, value string) {
	if value != "" {
		fields[column] = value
	}
}
