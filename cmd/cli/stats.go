package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/axellelanca/linkbio/cmd"
	"github.com/axellelanca/linkbio/internal/config"
	apperrors "github.com/axellelanca/linkbio/internal/errors"
	"github.com/axellelanca/linkbio/internal/repository"
	"github.com/axellelanca/linkbio/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var tokenFlag string

// StatsCmd represents the 'stats' command
var StatsCmd = &cobra.Command{
	Use:   "stats [profile-id]",
	Short: "Get analytics for a profile",
	Long:  `Prints view and per-link click counters for the given profile id. Requires the edit token.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	StatsCmd.Flags().StringVar(&tokenFlag, "token", "", "The profile's edit token")
	StatsCmd.MarkFlagRequired("token")

	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats executes the logic for the stats command
func runStats(_ *cobra.Command, args []string) {
	profileID := args[0]

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying SQL database: %v", err)
	}
	defer sqlDB.Close()

	profileRepo := repository.NewProfileRepository(db)
	clickRepo := repository.NewClickRepository(db)
	profileService := services.NewProfileService(profileRepo)

	analytics, err := profileService.GetAnalytics(profileID, tokenFlag)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProfileNotFound):
			fmt.Printf("Error: Profile '%s' not found\n", profileID)
		case errors.Is(err, apperrors.ErrUnauthorized):
			fmt.Println("Error: Invalid edit token")
		default:
			fmt.Printf("Error retrieving analytics: %v\n", err)
		}
		os.Exit(1)
	}

	profile, err := profileRepo.GetProfileByID(profileID)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	fmt.Printf("Analytics for profile: %s\n", profileID)
	fmt.Printf("Total views: %d\n", analytics.Views)
	fmt.Printf("Created: %s\n", time.UnixMilli(profile.CreatedAt).Format("2006-01-02 15:04:05"))
	for i, link := range analytics.Links {
		fmt.Printf("  [%d] %s (%s): %d click(s)\n", i, link.Title, link.URL, link.Clicks)
	}

	// Audit rows written by the click workers, may lag behind the counters
	audited, err := clickRepo.CountClicksByProfileID(profileID)
	if err != nil {
		log.Printf("Warning: failed to count audited clicks: %v", err)
		return
	}
	fmt.Printf("Audited click records: %d\n", audited)
}
