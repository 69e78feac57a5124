package api

import (
	"fmt"
	"net/http"

	"simcha/internal/cache"
	"simcha/internal/config"
	"simcha/internal/database"
	"simcha/internal/handlers"
	"simcha/internal/logger"
	"simcha/internal/messaging"
	"simcha/internal/metrics"
	"simcha/internal/middleware"
	"simcha/internal/repository"
	"simcha/internal/search"
	"simcha/internal/service"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP layer to the services and their backends.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer builds the full stack: database (with migrations), NATS,
// optional Valkey cache, optional Elasticsearch index, services, routes.
// The cache and the index are conveniences, so their connection failures
// downgrade to warnings; the database and NATS are not.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Addr != "" {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey.Addr, cfg.Valkey.Password, cfg.Valkey.TTL)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, table caching disabled", "error", err)
			valkeyClient = nil
		}
	}

	var guestIndex *search.GuestIndex
	esCfg := config.LoadElasticsearchConfig()
	if esCfg.URL != "" {
		guestIndex, err = search.NewGuestIndex(esCfg)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search falls back to SQL", "error", err)
			guestIndex = nil
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, guestIndex)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")
	{
		guests := api.Group("/guests")
		{
			guests.GET("", h.ListGuests)
			guests.POST("", h.CreateGuest)
			guests.GET("/reserve", h.ReserveList)
			guests.GET("/:id", h.GetGuest)
			guests.PUT("/:id", h.UpdateGuest)
		}

		seats := api.Group("/seats")
		{
			seats.GET("", h.ListSeats)
			seats.PATCH("/assign", h.AssignSeats)
			seats.PATCH("/release", h.ReleaseSeats)
		}

		tables := api.Group("/tables")
		{
			tables.GET("", h.ListTables)
			tables.POST("", h.OpenTable)
		}

		rsvp := api.Group("/rsvp")
		{
			rsvp.POST("/login", h.RSVPLogin)
			rsvp.PATCH("/attendance", h.RSVPAttendance)
			rsvp.PATCH("/party", h.RSVPParty)
		}

		sessions := api.Group("/admin/sessions")
		{
			sessions.POST("/:guestID", h.StartSession)
			sessions.DELETE("/:guestID", h.EndSession)
			sessions.PUT("/:guestID/details", h.SaveSessionDetails)
			sessions.GET("/:guestID/tables", h.SessionTables)
			sessions.POST("/:guestID/confirm", h.ConfirmSession)
			sessions.POST("/:guestID/back", h.SessionBack)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "simcha-api",
		"version": "1.0.0",
	})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests and the main HTTP server.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backend connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
