// Package main provides the entry point for the LingoFlow CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lingoflow-ai/lingoflow/cmd/lingoflow/commands"
)

func main() {
	// Provider API keys are commonly kept in a local .env file.
	godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
