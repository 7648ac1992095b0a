package cli

import (
	"fmt"
	"log"

	"github.com/axellelanca/linkbio/cmd"
	"github.com/axellelanca/linkbio/internal/config"
	"github.com/axellelanca/linkbio/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and updates
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured database (SQLite)
and executes GORM automatic migrations to create the 'profiles' and 'clicks'
tables based on the Go models. Columns added to the models after the initial
release (slug, views, customization) are backfilled onto existing tables
without failing when they already exist.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		// Close the underlying connection when migration is complete
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("FATAL: Failed to get underlying SQL database: %v", err)
		}
		defer sqlDB.Close()

		// AutoMigrate creates missing tables and adds missing columns
		if err := db.AutoMigrate(&models.Profile{}, &models.Click{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
