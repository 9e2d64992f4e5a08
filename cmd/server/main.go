// cmd/server/main.go - E-Learning Platform Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Внутренние пакеты проекта
	"github.com/quantumgenie/ElearningApplication/internal/config"
	"github.com/quantumgenie/ElearningApplication/internal/database"
	"github.com/quantumgenie/ElearningApplication/internal/events"
	"github.com/quantumgenie/ElearningApplication/internal/handlers"
	"github.com/quantumgenie/ElearningApplication/internal/logging"
	"github.com/quantumgenie/ElearningApplication/internal/middleware"
	"github.com/quantumgenie/ElearningApplication/internal/realtime"
	"github.com/quantumgenie/ElearningApplication/internal/services"
	"github.com/quantumgenie/ElearningApplication/internal/storage"
	"github.com/quantumgenie/ElearningApplication/pkg/auth"

	// Внешние зависимости
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	// Время запуска сервера для uptime в health check
	serverStartTime = time.Now()

	appVersion = "1.0.0"
)

func main() {
	// Загружаем .env файл в режиме разработки
	if err := godotenv.Load(); err != nil {
		logging.Logger.Warn(".env file not found, using environment variables")
	}

	// Загружаем конфигурацию
	cfg := config.Load()

	// Настраиваем логирование
	logging.Init(cfg.Environment, cfg.LogFile)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	printStartupInfo(cfg)

	// Подключаемся к MongoDB
	logging.Logger.Info("Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logging.Logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Logger.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			logging.Logger.Info("Disconnected from MongoDB")
		}
	}()

	// Создаем индексы в MongoDB
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logging.Logger.Warnf("Failed to create some indexes: %v", err)
	}
	cancelIndex()

	// Инициализируем JWT менеджер
	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiration)*time.Hour,
	)

	// Инициализируем хранилища
	userStore := storage.NewUserStore(db.Database.Collection("users"))
	courseStore := storage.NewCourseStore(db.Database.Collection("courses"))
	materialStore := storage.NewMaterialStore(db.Database.Collection("materials"))
	enrollmentStore := storage.NewEnrollmentStore(db.Database.Collection("enrollments"))
	notificationStore := storage.NewNotificationStore(db.Database.Collection("notifications"))
	feedbackStore := storage.NewFeedbackStore(db.Database.Collection("feedback"))
	chatStore := storage.NewChatStore(db.Database.Collection("chat_messages"))

	// Инициализируем WebSocket Hub для real-time каналов
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	// Мост доставки: счетчик непрочитанных + push в персональную группу
	notifier := services.NewNotifier(notificationStore, hub)

	// Триггеры создания уведомлений на события домена
	triggers := events.NewTriggers(
		notificationStore,
		enrollmentStore,
		courseStore,
		userStore,
		notifier,
	)
	materialStore.OnCreate(triggers.HandleMaterialCreated)
	enrollmentStore.OnCreate(triggers.HandleEnrollmentCreated)

	notificationService := services.NewNotificationService(notificationStore)

	// Инициализируем хендлеры
	authHandler := handlers.NewAuthHandler(userStore, jwtManager)
	userHandler := handlers.NewUserHandler(userStore)
	courseHandler := handlers.NewCourseHandler(courseStore, materialStore, enrollmentStore, feedbackStore)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWebSocketHandler(hub, jwtManager, chatStore)

	// Rate limiting (опционально)
	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		defer limiter.Stop()
	}

	// Создаем и настраиваем роутер
	router := setupRouter(cfg, authHandler, userHandler, courseHandler, notificationHandler, wsHandler, jwtManager, hub, limiter)

	// Создаем HTTP сервер
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Запускаем сервер в горутине
	go func() {
		logging.Logger.Infof("E-Learning Platform Backend v%s starting...", appVersion)
		logging.Logger.Infof("Server running on http://%s:%s", cfg.Host, cfg.Port)
		logging.Logger.Infof("WebSocket endpoints: ws://%s:%s/ws/notifications, ws://%s:%s/ws/chat/:room",
			cfg.Host, cfg.Port, cfg.Host, cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Shutting down server...")

	// Graceful shutdown с таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logging.Logger.Info("Server gracefully stopped")
	}
}

// printStartupInfo выводит информацию о запуске сервера
func printStartupInfo(cfg *config.Config) {
	logging.Logger.Info("================================================================================")
	logging.Logger.Infof("E-Learning Platform Backend v%s", appVersion)
	logging.Logger.Infof("Environment: %s", cfg.Environment)
	logging.Logger.Infof("Host: %s | Port: %s | Database: %s", cfg.Host, cfg.Port, cfg.DatabaseName)
	logging.Logger.Infof("CORS Origins: %v", cfg.AllowedOrigins)
	if cfg.RateLimitEnabled {
		logging.Logger.Infof("Rate Limit: %d requests per %s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	logging.Logger.Info("================================================================================")
}

// setupRouter настраивает все маршруты
func setupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	courseHandler *handlers.CourseHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WebSocketHandler,
	jwtManager *auth.JWTManager,
	hub *realtime.Hub,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()

	// Глобальные middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// CORS настройки для поддержки frontend
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Rate limiting (опционально)
	if limiter != nil {
		router.Use(limiter.RateLimit())
	}

	// WebSocket каналы — токен идет в query-параметре
	router.GET("/ws/notifications", wsHandler.HandleNotifications)
	router.GET("/ws/chat/:room", wsHandler.HandleChat)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"stats": gin.H{
				"websocket_connections": hub.GetConnectionsCount(),
				"active_groups":         hub.GetActiveGroupsCount(),
			},
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Публичные маршруты (без авторизации)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/courses", courseHandler.GetCourses)

		// Защищенные маршруты (требуют JWT)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/users/me", userHandler.GetProfile)
			protected.PUT("/users/me", userHandler.UpdateProfile)
			protected.PUT("/users/me/status", userHandler.UpdateStatus)

			protected.GET("/courses/:id", courseHandler.GetCourse)
			protected.GET("/courses/:id/materials", courseHandler.GetMaterials)

			protected.GET("/notifications", notificationHandler.GetNotifications)
			protected.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
			protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

			protected.GET("/chat/:room/messages", wsHandler.GetChatHistory)

			// Маршруты преподавателя
			teacher := protected.Group("")
			teacher.Use(middleware.RequireRole("teacher"))
			{
				teacher.POST("/courses", courseHandler.CreateCourse)
				teacher.PUT("/courses/:id", courseHandler.UpdateCourse)
				teacher.DELETE("/courses/:id", courseHandler.DeleteCourse)
				teacher.POST("/courses/:id/materials", courseHandler.AddMaterial)
				teacher.DELETE("/materials/:id", courseHandler.DeleteMaterial)
				teacher.GET("/courses/:id/enrollments", courseHandler.GetEnrollments)
				teacher.PUT("/enrollments/:id/block", courseHandler.BlockStudent)
				teacher.DELETE("/enrollments/:id", courseHandler.RemoveStudent)
				teacher.GET("/courses/:id/feedback", courseHandler.GetFeedback)
				teacher.GET("/users/search", userHandler.SearchUsers)
			}

			// Маршруты студента
			student := protected.Group("")
			student.Use(middleware.RequireRole("student"))
			{
				student.POST("/courses/:id/enroll", courseHandler.Enroll)
				student.DELETE("/courses/:id/enroll", courseHandler.Unenroll)
				student.POST("/courses/:id/feedback", courseHandler.SendFeedback)
			}
		}
	}

	// 404 handler для неизвестных маршрутов
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
