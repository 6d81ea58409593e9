package main

import (
	"log"
	"os"
	"time"

	"github.com/Kyz7/console/internal/config"
	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/seed"
	"github.com/Kyz7/console/internal/server"
	"github.com/Kyz7/console/internal/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}

	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}
	log.Println("✅ Required environment variables validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== CACHE SETUP ==========
	database.ConnectRedis(cfg.RedisAddr)

	// ========== SEED DEFAULT DATA ==========
	if err := seed.Run(db); err != nil {
		log.Println("⚠️  Failed to seed roles and grants:", err)
	} else {
		log.Println("✅ Default roles and grants seeded")
	}

	// ========== BACKGROUND JOBS ==========
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			result := database.DB.Where("expires_at < ?", time.Now()).Delete(&models.ResetToken{})
			if result.RowsAffected > 0 {
				log.Printf("🧹 Cleaned up %d expired reset tokens", result.RowsAffected)
			}

			result = database.DB.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
			if result.RowsAffected > 0 {
				log.Printf("🧹 Cleaned up %d expired refresh tokens", result.RowsAffected)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(db)

	log.Printf("🚀 Console API starting on %s", cfg.ServerAddr)
	log.Printf("📚 Health check: %s/health", cfg.ServerAddr)
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
