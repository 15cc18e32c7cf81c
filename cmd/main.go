package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/community"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/idea"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/job"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/message"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/notification"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/stats"
	"github.com/zack12Ali/sb1-a2fvdq/internal/api/user"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/metrics"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/memory"
	mongostore "github.com/zack12Ali/sb1-a2fvdq/internal/repository/mongo"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/mysql"
	redisstore "github.com/zack12Ali/sb1-a2fvdq/internal/repository/redis"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/storage"
	"github.com/zack12Ali/sb1-a2fvdq/internal/telemetry"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"github.com/zack12Ali/sb1-a2fvdq/internal/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	config.Init()

	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("starting startupai api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, config.AppConfig.OTelEndpoint, config.AppConfig.Debug)
	if err != nil {
		util.Logger.Fatal("failed to initialise tracing", zap.Error(err))
	}

	db, err := mysql.Open(ctx, mysql.DSN(config.AppConfig))
	if err != nil {
		util.Logger.Fatal("failed to connect to the database", zap.Error(err))
	}
	defer db.Close()
	util.Logger.Info("database connected")

	postRepo, closePosts := openPostStore(ctx, db)
	defer closePosts()

	sessions, broker, closeRedis := openRedis(ctx)
	defer closeRedis()

	util.RegisterValidators()

	uploader, err := storage.New(ctx, config.AppConfig)
	if err != nil {
		util.Logger.Fatal("failed to initialise storage", zap.Error(err))
	}
	if closer, ok := uploader.(io.Closer); ok {
		defer closer.Close()
	}

	userRepo := mysql.NewUserRepository(db)
	emailService := service.NewEmailService()
	notificationService := service.NewNotificationService(mysql.NewNotificationRepository(db), userRepo, emailService)

	publisher, consumer := openEvents(notificationService)
	defer publisher.Close()
	if consumer != nil {
		go func() {
			if err := consumer.Run(ctx); err != nil {
				util.Logger.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	userService := service.NewUserService(userRepo, sessions, uploader, emailService)
	postService := service.NewPostService(postRepo, broker, publisher)
	messageService := service.NewMessageService(mysql.NewMessageRepository(db), userRepo, broker, publisher)
	jobService := service.NewJobService(mysql.NewJobRepository(db), publisher)
	statsService := service.NewStatsService(userRepo, postRepo)
	ideaService := service.NewIdeaService(
		webhook.NewClient(config.AppConfig.WebhookURL, config.AppConfig.WebhookTimeout),
		mysql.NewIdeaRepository(db),
	)

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService)
	userHandler := user.NewUserHandler(userService)
	communityHandler := community.NewCommunityHandler(postService, userService)
	messageHandler := message.NewMessageHandler(messageService)
	jobHandler := job.NewJobHandler(jobService)
	notificationHandler := notification.NewNotificationHandler(notificationService)
	ideaHandler := idea.NewIdeaHandler(ideaService)
	statsHandler := stats.NewStatsHandler(statsService)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware())
	r.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Access-Control-Allow-Origin"}
	r.Use(cors.New(corsConfig))

	if local, ok := uploader.(*storage.LocalStorage); ok {
		r.Static("/uploads", local.BasePath())
	}

	r.GET("/healthz", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(userService)

	api := r.Group("/api")
	{
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)
		api.POST("/auth/oauth", authHandler.SignInWithProvider)
		api.POST("/auth/password-reset", authHandler.RequestPasswordReset)
		api.POST("/auth/password-reset/confirm", authHandler.ResetPassword)
		api.POST("/auth/signout", auth, authHandler.SignOut)

		api.GET("/posts", communityHandler.ListPosts)
		api.GET("/posts/stream", communityHandler.StreamPosts)
		api.GET("/posts/:id", communityHandler.GetPost)
		api.GET("/posts/:id/comments", communityHandler.ListComments)
		api.GET("/jobs", jobHandler.ListJobs)
		api.GET("/stats", statsHandler.GetCommunityStats)

		authorized := api.Group("/")
		authorized.Use(auth)
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.PUT("/profile/password", profileHandler.ChangePassword)
			authorized.PUT("/profile/notifications", profileHandler.UpdateNotificationSettings)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)
			authorized.GET("/users/:id", userHandler.GetUser)

			authorized.POST("/posts", communityHandler.CreatePost)
			authorized.PUT("/posts/:id", communityHandler.UpdatePost)
			authorized.DELETE("/posts/:id", communityHandler.DeletePost)
			authorized.POST("/posts/:id/like", communityHandler.ToggleLike)
			authorized.POST("/posts/:id/comments", communityHandler.AddComment)

			authorized.GET("/messages/chats", messageHandler.ListChats)
			authorized.DELETE("/messages/item/:id", messageHandler.DeleteMessage)
			authorized.GET("/messages/:userId", messageHandler.ListConversation)
			authorized.POST("/messages/:userId", messageHandler.SendMessage)
			authorized.PUT("/messages/:userId/read", messageHandler.MarkRead)
			authorized.GET("/messages/:userId/stream", messageHandler.StreamConversation)

			authorized.POST("/jobs", jobHandler.CreateJob)
			authorized.POST("/jobs/:id/apply", jobHandler.Apply)

			authorized.GET("/notifications", notificationHandler.List)
			authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)

			authorized.POST("/ideas/generate", ideaHandler.Generate)
			authorized.GET("/ideas", ideaHandler.History)
		}
	}

	if config.AppConfig.Debug {
		for _, route := range r.Routes() {
			util.Logger.Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}

	srv := &http.Server{
		Addr:              config.AppConfig.HTTPAddr,
		Handler:           otelhttp.NewHandler(r, telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		util.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	util.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("forced shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		util.Logger.Warn("failed to flush traces", zap.Error(err))
	}
	util.Logger.Info("server stopped")
}

// openPostStore returns the community post store selected by POST_STORE.
func openPostStore(ctx context.Context, db *sql.DB) (interfaces.PostRepository, func()) {
	switch config.AppConfig.PostStore {
	case "mongo":
		client, err := mongostore.Connect(ctx, config.AppConfig.MongoURI)
		if err != nil {
			util.Logger.Fatal("failed to connect to mongo", zap.Error(err))
		}
		repo := mongostore.NewPostRepository(client, config.AppConfig.MongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			util.Logger.Fatal("failed to create mongo indexes", zap.Error(err))
		}
		util.Logger.Info("using mongo post store", zap.String("database", config.AppConfig.MongoDB))
		return repo, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
	case "memory":
		util.Logger.Warn("using in-memory post store; posts are lost on restart")
		return memory.NewPostRepository(), func() {}
	default:
		return mysql.NewCommunityRepository(db), func() {}
	}
}

// openRedis uses Redis for sessions and live updates when REDIS_ADDR is set.
func openRedis(ctx context.Context) (interfaces.SessionStore, realtime.Broker, func()) {
	if config.AppConfig.RedisAddr == "" {
		util.Logger.Info("REDIS_ADDR not set; sessions and live updates stay in process")
		broker := realtime.NewMemoryBroker()
		return memory.NewSessionStore(), broker, func() { _ = broker.Close() }
	}

	rdb, err := redisstore.NewClient(ctx, config.AppConfig.RedisAddr)
	if err != nil {
		util.Logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	broker := realtime.NewRedisBroker(rdb)
	return redisstore.NewSessionStore(rdb), broker, func() {
		_ = broker.Close()
		if err := rdb.Close(); err != nil {
			util.Logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

// openEvents publishes to Kafka when KAFKA_BROKERS is set and otherwise dispatches in process.
func openEvents(notifications *service.NotificationService) (events.Publisher, *events.Consumer) {
	brokers := strings.TrimSpace(config.AppConfig.KafkaBrokers)
	if brokers == "" {
		return events.NewDispatcher(notifications.HandleEvent), nil
	}

	util.Logger.Info("publishing events to kafka", zap.String("topic", config.AppConfig.KafkaTopic))
	publisher := events.NewKafkaPublisher(brokers, config.AppConfig.KafkaTopic)
	consumer := events.NewConsumer(brokers, config.AppConfig.KafkaGroupID, config.AppConfig.KafkaTopic, notifications.HandleEvent)
	return publisher, consumer
}
