package repository

import (
	"fmt"

	"github.com/axellelanca/linkbio/internal/models"
	"gorm.io/gorm"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux données
type ClickRepository interface {
	CreateClick(click *models.Click) error
	CountClicksByProfileID(profileID string) (int, error)
}

// GormClickRepository est l'implémentation de l'interface ClickRepository utilisant GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository crée et retourne une nouvelle instance de GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick insère un nouvel enregistrement de clic dans la base de données.
func (r *GormClickRepository) CreateClick(click *models.Click) error {
	if err := r.db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicksByProfileID compte le nombre total de clics audités pour un profil donné.
func (r *GormClickRepository) CountClicksByProfileID(profileID string) (int, error) {
	var count int64
	if err := r.db.Model(&models.Click{}).Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for profile %s: %w", profileID, err)
	}
	return int(count), nil
}
