package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/axellelanca/linkbio/internal/errors"
	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/repository"
)

// newTestService wires a ProfileService against a fresh in-memory SQLite
// database, isolated per test via a named shared-cache DSN.
func newTestService(t *testing.T) (*ProfileService, *repository.GormProfileRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Click{}))

	repo := repository.NewProfileRepository(db)
	return NewProfileService(repo), repo, db
}

func TestCreateProfileWithoutSlug(t *testing.T) {
	svc, repo, _ := newTestService(t)

	first, err := svc.CreateProfile(CreateProfileInput{Name: "Ada"})
	require.NoError(t, err)
	second, err := svc.CreateProfile(CreateProfileInput{Name: "Grace"})
	require.NoError(t, err)

	assert.Len(t, first.ID, 8)
	assert.Len(t, first.EditToken, 24)
	assert.Equal(t, "/p/"+first.ID, first.URL)
	assert.NotEqual(t, first.ID, second.ID)

	stored, err := repo.GetProfileByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	assert.Nil(t, stored.Slug)
	assert.Equal(t, int64(0), stored.Views)
	assert.Equal(t, "dark", stored.Theme)
	assert.Equal(t, "#1a1a1a", stored.BgColor)
	assert.Equal(t, "#3b82f6", stored.ButtonColor)
	assert.Equal(t, "minimal", stored.Template)
	assert.NotZero(t, stored.CreatedAt)
}

func TestCreateProfileWithSlug(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{Name: "Ada", Slug: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "/@ada", result.URL)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Slug)
	assert.Equal(t, "ada", *stored.Slug)
}

func TestCreateProfileStripsLeadingAt(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{Slug: "@ada"})
	require.NoError(t, err)
	assert.Equal(t, "/@ada", result.URL)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Slug)
	assert.Equal(t, "ada", *stored.Slug)
}

func TestCreateProfileSlugConflict(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProfile(CreateProfileInput{Slug: "ada"})
	require.NoError(t, err)

	_, err = svc.CreateProfile(CreateProfileInput{Slug: "ada"})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)

	// A leading '@' is stripped before the uniqueness comparison too
	_, err = svc.CreateProfile(CreateProfileInput{Slug: "@ada"})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
}

func TestCreateProfileInvalidSlug(t *testing.T) {
	svc, _, db := newTestService(t)

	tests := []struct {
		name string
		slug string
	}{
		{"too short", "a"},
		{"too long", "abcdefghijklmnopqrstuvwxyz12345"},
		{"whitespace", "ada lovelace"},
		{"punctuation", "ada!"},
		{"unicode", "adä"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProfile(CreateProfileInput{Slug: tt.slug})
			assert.ErrorIs(t, err, apperrors.ErrInvalidSlug)
		})
	}

	// Validation failures must reject before any row is inserted
	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetProfileIncrementsViews(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Name:  "Ada",
		Links: []models.Link{{Title: "Blog", URL: "https://a.example"}},
	})
	require.NoError(t, err)

	view, err := svc.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Views)
	assert.Equal(t, []models.Link{{Title: "Blog", URL: "https://a.example"}}, view.Links)

	view, err = svc.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Views)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Views)
}

func TestGetProfileBySlug(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{Name: "Ada", Slug: "ada"})
	require.NoError(t, err)

	view, err := svc.GetProfileBySlug("ada")
	require.NoError(t, err)
	assert.Equal(t, result.ID, view.ID)
	assert.Equal(t, int64(1), view.Views)

	_, err = svc.GetProfileBySlug("nobody")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetProfileByID("missing1")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestUpdateProfileAuthorization(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{Name: "Ada"})
	require.NoError(t, err)

	err = svc.UpdateProfile(result.ID, "", UpdateProfileInput{Name: "Mallory"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.UpdateProfile(result.ID, "wrong-token", UpdateProfileInput{Name: "Mallory"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.UpdateProfile("missing1", "some-token", UpdateProfileInput{Name: "Mallory"})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	// A rejected update never mutates the row
	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
}

func TestUpdateProfilePartialMerge(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Name:  "Ada",
		Bio:   "mathematician",
		Theme: "light",
		Links: []models.Link{{Title: "Blog", URL: "https://a.example"}},
	})
	require.NoError(t, err)

	// Only bio supplied: every other field keeps its stored value
	err = svc.UpdateProfile(result.ID, result.EditToken, UpdateProfileInput{Bio: "analyst"})
	require.NoError(t, err)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "analyst", stored.Bio)
	assert.Equal(t, "light", stored.Theme)
	assert.Equal(t, []models.Link{{Title: "Blog", URL: "https://a.example"}}, models.DecodeLinks(stored.Data))
}

func TestUpdateProfileLinksReplaceBlob(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Links: []models.Link{{Title: "Blog", URL: "https://a.example"}},
	})
	require.NoError(t, err)

	// Accumulate a click, then update links without echoing the counter:
	// the supplied array fully replaces the blob, so the count is lost
	_, err = svc.RecordClick(result.ID, 0)
	require.NoError(t, err)

	newLinks := []models.Link{{Title: "Blog", URL: "https://a.example"}}
	err = svc.UpdateProfile(result.ID, result.EditToken, UpdateProfileInput{Links: &newLinks})
	require.NoError(t, err)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), models.DecodeLinks(stored.Data)[0].Clicks)

	// Echoing the counter back preserves it
	echoed := []models.Link{{Title: "Blog", URL: "https://a.example", Clicks: 7}}
	err = svc.UpdateProfile(result.ID, result.EditToken, UpdateProfileInput{Links: &echoed})
	require.NoError(t, err)

	stored, err = repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), models.DecodeLinks(stored.Data)[0].Clicks)
}

func TestUpdateProfileSlugNotRevalidated(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{Slug: "ada"})
	require.NoError(t, err)

	// Update normalizes the slug but does not re-check the format pattern
	err = svc.UpdateProfile(result.ID, result.EditToken, UpdateProfileInput{Slug: "@Not A Valid Slug!"})
	require.NoError(t, err)

	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Slug)
	assert.Equal(t, "Not A Valid Slug!", *stored.Slug)
}

func TestRecordClick(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Links: []models.Link{
			{Title: "Blog", URL: "https://a.example"},
			{Title: "Shop", URL: "https://b.example"},
		},
	})
	require.NoError(t, err)

	url, err := svc.RecordClick(result.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", url)

	// Only the clicked link's counter moves
	stored, err := repo.GetProfileByID(result.ID)
	require.NoError(t, err)
	links := models.DecodeLinks(stored.Data)
	assert.Equal(t, int64(0), links[0].Clicks)
	assert.Equal(t, int64(1), links[1].Clicks)

	_, err = svc.RecordClick(result.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
	_, err = svc.RecordClick(result.ID, -1)
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
	_, err = svc.RecordClick("missing1", 0)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestGetAnalytics(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Links: []models.Link{{Title: "Blog", URL: "https://a.example"}},
	})
	require.NoError(t, err)

	_, err = svc.GetAnalytics(result.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.GetAnalytics(result.ID, "wrong-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = svc.GetAnalytics("missing1", result.EditToken)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)

	_, err = svc.GetProfileByID(result.ID)
	require.NoError(t, err)
	_, err = svc.RecordClick(result.ID, 0)
	require.NoError(t, err)

	analytics, err := svc.GetAnalytics(result.ID, result.EditToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), analytics.Views)
	require.Len(t, analytics.Links, 1)
	assert.Equal(t, int64(1), analytics.Links[0].Clicks)
}

func TestMalformedDataBlobTreatedAsEmpty(t *testing.T) {
	svc, _, db := newTestService(t)

	result, err := svc.CreateProfile(CreateProfileInput{
		Links: []models.Link{{Title: "Blog", URL: "https://a.example"}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", result.ID).
		Update("data", "{not json").Error)

	view, err := svc.GetProfileByID(result.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Link{}, view.Links)

	_, err = svc.RecordClick(result.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestGenerateRandomStringAlphabet(t *testing.T) {
	svc, _, _ := newTestService(t)

	s, err := svc.GenerateRandomString(64)
	require.NoError(t, err)
	assert.Len(t, s, 64)
	assert.Regexp(t, "^[A-Za-z0-9_-]+$", s)
}
