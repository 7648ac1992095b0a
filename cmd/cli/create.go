package cli

import (
	"fmt"
	"log"

	"github.com/axellelanca/linkbio/cmd"
	"github.com/axellelanca/linkbio/internal/config"
	"github.com/axellelanca/linkbio/internal/repository"
	"github.com/axellelanca/linkbio/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	nameFlag string
	bioFlag  string
	slugFlag string
)

// CreateCmd represents the 'create' command
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a new profile from the command line.",
	Long: `This command creates a profile with the given name, bio and optional slug,
and prints the generated id, the public URL and the secret edit token.

Example:
  linkbio create --name="Ada" --bio="Links and things" --slug=ada`,
	Run: func(_ *cobra.Command, _ []string) {
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
		profileService := services.NewProfileService(profileRepo)

		result, err := profileService.CreateProfile(services.CreateProfileInput{
			Name: nameFlag,
			Bio:  bioFlag,
			Slug: slugFlag,
		})
		if err != nil {
			log.Fatalf("Failed to create profile: %v", err)
		}

		fmt.Printf("Profile created successfully:\n")
		fmt.Printf("Id: %s\n", result.ID)
		fmt.Printf("URL: %s%s\n", cfg.Server.BaseURL, result.URL)
		fmt.Printf("Edit token (keep it secret): %s\n", result.EditToken)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the profile")
	CreateCmd.Flags().StringVar(&bioFlag, "bio", "", "Short bio text")
	CreateCmd.Flags().StringVar(&slugFlag, "slug", "", "Optional custom slug for the public URL")

	cmd.RootCmd.AddCommand(CreateCmd)
}
