package main

import (
	"fmt"

	"github.com/joho/godotenv"
)

// loadEnvFile applies a dotenv file to the process environment. Variables
// already set win.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
