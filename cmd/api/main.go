package main

import (
	"log"
	"log/slog"
	"os"
	"pulsedigest/db"
	"pulsedigest/internal/handler"
	"pulsedigest/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	digestRepo := repository.NewDigestRepository(db.DB)
	digestHandler := handler.NewDigestHandler(digestRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("allowed origins", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/digests/latest", digestHandler.GetLatestDigest)
	r.GET("/digests/:id", digestHandler.GetDigest)
	r.GET("/digests", digestHandler.GetDigests)
	r.GET("/health", digestHandler.GetHealth)

	addr := ":" + os.Getenv("PORT")
	if addr == ":" {
		addr = ":8080"
	}

	err = r.Run(addr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
