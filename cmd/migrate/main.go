package main

import (
	"wallet_api/internal/config" // Custom import path (Config)
	"wallet_api/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Create or update the users and transactions tables
}
