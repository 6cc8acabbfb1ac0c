package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/dukapos/go-api/internal/router"
	"github.com/dukapos/go-api/pkg/ai"
	"github.com/dukapos/go-api/pkg/global"
	"github.com/dukapos/go-api/pkg/mongo"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()
	ai.InitializeAIService()
	router.InitEngine()
	router.InitializeRoutes()

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
