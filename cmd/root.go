package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/linkbio/internal/config"
	"github.com/spf13/cobra"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (run-server, migrate, create, stats) are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "linkbio",
	Short: "A link-in-bio profile service",
	Long: `A link-in-bio profile service that lets users publish a themed profile page
with a list of tracked links, identified by a generated id or a custom slug.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Set up configuration initialization to run before any command executes
	cobra.OnInitialize(initConfig)

	// Subcommands register themselves via their own init() functions,
	// which avoids import cycles between cmd and its subpackages.
}

// initConfig loads the application configuration before every command runs.
func initConfig() {
	var err error

	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
