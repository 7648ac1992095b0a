package main

import (
	"github.com/axellelanca/linkbio/cmd"

	// Blank imports so each subcommand registers itself with the root command
	_ "github.com/axellelanca/linkbio/cmd/cli"
	_ "github.com/axellelanca/linkbio/cmd/server"
)

func main() {
	cmd.Execute()
}
