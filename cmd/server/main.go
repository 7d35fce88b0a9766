package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wrenhq/wren/server"
	"github.com/wrenhq/wren/server/middlewares"
	"github.com/wrenhq/wren/store"
	"github.com/wrenhq/wren/utils/dotenv"
	. "github.com/wrenhq/wren/utils/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	InitLogger()

	if os.Getenv("JWT_SECRET") == "" {
		Log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()
	st, err := store.NewMongoStore(ctx, store.NewRedisClient())
	if err != nil {
		Log.Fatal("store setup failed: ", err)
	}

	// Default with the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middlewares.RequestID())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	server.NewServer(st).RegisterRoutes(router, middlewares.JWT())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	Log.Info("api server starts up on :", port)
	router.Run(":" + port)
}
