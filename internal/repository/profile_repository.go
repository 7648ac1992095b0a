package repository

import (
	"fmt"

	"github.com/axellelanca/linkbio/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository est une interface qui définit les méthodes d'accès aux données
type ProfileRepository interface {
	CreateProfile(profile *models.Profile) error
	GetProfileByID(id string) (*models.Profile, error)
	GetProfileBySlug(slug string) (*models.Profile, error)
	SetSlug(id string, slug string) error
	UpdateFields(id string, fields map[string]interface{}) error
	UpdateData(id string, data string) error
	IncrementViews(id string) error
	GetAllProfiles() ([]models.Profile, error)
}

// GormProfileRepository est l'implémentation de ProfileRepository utilisant GORM.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository crée et retourne une nouvelle instance de GormProfileRepository.
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// CreateProfile insère un nouveau profil dans la base de données.
func (r *GormProfileRepository) CreateProfile(profile *models.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfileByID récupère un profil de la base de données en utilisant son id.
func (r *GormProfileRepository) GetProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileBySlug récupère un profil de la base de données en utilisant son slug.
func (r *GormProfileRepository) GetProfileBySlug(slug string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("slug = ?", slug).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetSlug assigns a slug to an already inserted profile row.
// Kept as a separate statement after the insert so a slug failure
// never invalidates the freshly created profile.
func (r *GormProfileRepository) SetSlug(id string, slug string) error {
	if err := r.db.Model(&models.Profile{}).Where("id = ?", id).Update("slug", slug).Error; err != nil {
		return fmt.Errorf("failed to set slug for profile %s: %w", id, err)
	}
	return nil
}

// UpdateFields applies a partial update: only the columns present in the map
// are written, every other column keeps its stored value. This is the Go
// equivalent of the SQL COALESCE merge the update endpoint promises.
func (r *GormProfileRepository) UpdateFields(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	return nil
}

// UpdateData replaces the serialized links blob of a profile.
func (r *GormProfileRepository) UpdateData(id string, data string) error {
	if err := r.db.Model(&models.Profile{}).Where("id = ?", id).Update("data", data).Error; err != nil {
		return fmt.Errorf("failed to update links data for profile %s: %w", id, err)
	}
	return nil
}

// IncrementViews bumps the view counter in SQL so concurrent reads do not
// lose increments. COALESCE covers rows created before the views column existed.
func (r *GormProfileRepository) IncrementViews(id string) error {
	if err := r.db.Model(&models.Profile{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("COALESCE(views, 0) + 1")).Error; err != nil {
		return fmt.Errorf("failed to increment views for profile %s: %w", id, err)
	}
	return nil
}

// GetAllProfiles récupère tous les profils de la base de données.
func (r *GormProfileRepository) GetAllProfiles() ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all profiles: %w", err)
	}
	return profiles, nil
}
