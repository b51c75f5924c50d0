package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agribuddy/internal/ai"
	"agribuddy/internal/config"
	"agribuddy/internal/handler"
	"agribuddy/internal/pkg/cache"
	"agribuddy/internal/pkg/postgres"
	"agribuddy/internal/repository"
	"agribuddy/internal/server/middleware"
	"agribuddy/internal/service"
)

// Server is the HTTP server with its backing connections
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	pg     *postgres.Client
	redis  *cache.RedisCache
}

// New creates the server and wires every layer. Postgres is required;
// Redis is optional and the knowledge cache degrades without it.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	pg, err := postgres.New(&cfg.Postgres)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to PostgreSQL")

	if err := postgres.Migrate(context.Background(), pg.DB()); err != nil {
		pg.Close()
		return nil, err
	}

	// Redis is optional, the knowledge cache just degrades to the database
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		pg:     pg,
		redis:  redisCache,
	}

	if err := srv.setupRoutes(); err != nil {
		pg.Close()
		return nil, err
	}

	return srv, nil
}

func (s *Server) setupRoutes() error {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler(s.pg)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := s.pg.DB()
	conversationRepo := repository.NewConversationRepo(db)
	knowledgeRepo := repository.NewKnowledgeRepo(db, s.redis, s.cfg.Knowledge.CacheTTL)
	summaryRepo := repository.NewSummaryRepo(db)

	aiClient, err := ai.NewClient(context.Background(), &s.cfg.AI)
	if err != nil {
		return err
	}
	log.Info().
		Str("vision_provider", s.cfg.AI.Vision.Provider).
		Str("vision_model", s.cfg.AI.Vision.Model).
		Str("text_model", s.cfg.AI.Text.Model).
		Msg("initialized generative providers")

	router := service.NewRouter(knowledgeRepo, aiClient, aiClient)
	chatSvc := service.NewChatService(router, aiClient, conversationRepo, s.cfg.AI.ProviderTimeout)
	dashboardSvc := service.NewDashboardService(aiClient, summaryRepo)

	chatHandler := handler.NewChatHandler(chatSvc, s.cfg.Upload.MaxSize)
	conversationHandler := handler.NewConversationHandler(conversationRepo)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeRepo)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/chat/start", chatHandler.Start)
		v1.POST("/chat/:conversationId/message", chatHandler.Message)

		v1.GET("/conversations", conversationHandler.List)
		v1.GET("/conversations/:id", conversationHandler.Get)
		v1.DELETE("/conversations/:id", conversationHandler.Delete)

		v1.GET("/knowledge", knowledgeHandler.List)

		v1.GET("/dashboard/summary", dashboardHandler.Summary)
		v1.POST("/dashboard/summary", dashboardHandler.Generate)
	}

	return nil
}

// Run starts the server and blocks until the context is canceled or the
// listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}
		if err := s.pg.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close PostgreSQL connection")
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine exposes the Gin engine for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
