package main

import (
	"fmt"
	"os"

	"github.com/rajesh-ms/learn-lego-programming/cmd"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found - using environment variables")
	} else {
		utils.LogDebug("Loaded environment variables from .env file")
	}
}

func main() {
	err := cmd.Execute()
	utils.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
