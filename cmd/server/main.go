package main

import (
	"net/http"
	"time"

	"shelfpick/backend/internal/auth"
	"shelfpick/backend/internal/bgg"
	"shelfpick/backend/internal/catalog"
	"shelfpick/backend/internal/config"
	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/handler"
	"shelfpick/backend/internal/hub"
	"shelfpick/backend/internal/logging"
	"shelfpick/backend/internal/models"
	"shelfpick/backend/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	// Swagger imports
	_ "shelfpick/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Shelfpick API
// @version         1.0
// @description     Self-hosted board game collection manager and pick-session API.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey CookieAuth
// @in cookie
// @name shelfpick_session
func main() {
	logging.Bootstrap()
	config.LoadConfig()

	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)
	bootstrapAdmin()

	stop := make(chan struct{})
	defer close(stop)

	sessionStore := store.NewSessionStore(database.DB)
	gameCatalog := catalog.New(database.DB)

	registry := hub.NewRegistry()
	registry.StartSweeper(10*time.Minute, stop)
	wsServer := hub.NewServer(registry, sessionStore)

	bggClient := bgg.NewClient()
	importer := bgg.NewImporter(database.DB, bggClient)
	importer.Start(stop)

	sessionHandler := handler.NewSessionHandler(sessionStore, gameCatalog)
	adminHandler := handler.NewAdminHandler(importer, sessionStore)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Realtime channel for pick sessions
	router.GET("/ws/sessions/:code", wsServer.Handle)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/logout", handler.LogoutUser)
			authRoutes.GET("/me", auth.AuthMiddleware(), handler.GetMe)
		}

		// Pick sessions are deliberately unauthenticated: the join code
		// plus a playerId obtained via join is the whole access model.
		sessionRoutes := apiV1.Group("/sessions")
		{
			sessionRoutes.POST("", sessionHandler.Create)
			sessionRoutes.GET("/:code", sessionHandler.Get)
			sessionRoutes.POST("/:code/join", sessionHandler.Join)
			sessionRoutes.POST("/:code/vote", sessionHandler.Vote)
			sessionRoutes.POST("/:code/complete", sessionHandler.Complete)
			sessionRoutes.POST("/:code/end", sessionHandler.End)
			sessionRoutes.GET("/:code/results", sessionHandler.Results)
		}

		// Public catalog routes. Games take the optional session so
		// logged-in users also see unowned catalog entries.
		apiV1.GET("/games", auth.OptionalAuthMiddleware(), handler.GetGames)
		apiV1.GET("/games/:id", handler.GetGameByID)
		apiV1.GET("/categories", handler.GetCategories)
		apiV1.GET("/lists", handler.GetGameLists)
		apiV1.GET("/lists/:slug", handler.GetGameListBySlug)
		apiV1.GET("/players", handler.GetPlayers)
		apiV1.GET("/plays", handler.GetPlays)
		apiV1.GET("/settings", handler.GetPublicSettings)

		// Routes for logged-in users
		protected := apiV1.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			protected.POST("/plays", handler.CreatePlay)
			protected.DELETE("/plays/:id", handler.DeletePlay)
			protected.POST("/players", handler.CreatePlayer)
			protected.PUT("/players/:id", handler.UpdatePlayer)
			protected.DELETE("/players/:id", handler.DeletePlayer)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.POST("/users", handler.RegisterUser)

			categories := adminRoutes.Group("/categories")
			{
				categories.POST("", handler.CreateCategory)
				categories.PUT("/:id", handler.UpdateCategory)
				categories.DELETE("/:id", handler.DeleteCategory)
			}

			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.POST("", handler.CreateGame)
				adminGameRoutes.PUT("/:id", handler.UpdateGame)
				adminGameRoutes.DELETE("/:id", handler.DeleteGame)
			}

			lists := adminRoutes.Group("/lists")
			{
				lists.POST("", handler.CreateGameList)
				lists.PUT("/:id", handler.UpdateGameList)
				lists.DELETE("/:id", handler.DeleteGameList)
				lists.POST("/:id/games", handler.AddGameToList)
				lists.DELETE("/:id/games/:gameID", handler.RemoveGameFromList)
			}

			adminRoutes.GET("/settings", handler.GetAllSettings)
			adminRoutes.PUT("/settings", handler.UpsertSetting)

			adminRoutes.POST("/bgg/import", adminHandler.StartImport)
			adminRoutes.GET("/bgg/import/status", adminHandler.ImportStatus)
			adminRoutes.POST("/sessions/cleanup", adminHandler.CleanupSessions)
		}
	}

	logging.Log.Infof("Server is running on %s", config.AppConfig.ServerAddr)
	logging.Log.Fatal(router.Run(config.AppConfig.ServerAddr))
}

// bootstrapAdmin creates the configured admin account on an empty users
// table, so a fresh install can log in.
func bootstrapAdmin() {
	if config.AppConfig.AdminUser == "" || config.AppConfig.AdminPassword == "" {
		return
	}

	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(config.AppConfig.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.Log.Errorf("Failed to hash bootstrap admin password: %v", err)
		return
	}

	user := models.User{
		Nickname:     config.AppConfig.AdminUser,
		Email:        config.AppConfig.AdminUser + "@localhost",
		PasswordHash: string(hashedPassword),
		Role:         "admin",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		logging.Log.Errorf("Failed to create bootstrap admin: %v", err)
		return
	}
	logging.Log.Infof("Created bootstrap admin user %q", user.Nickname)
}
