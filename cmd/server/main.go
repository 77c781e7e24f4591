package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/config"
	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/httpserver"
	"github.com/panjiggm/syntegra-app-sub000/internal/middleware"
	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/search"
	"github.com/panjiggm/syntegra-app-sub000/internal/service"
	"github.com/panjiggm/syntegra-app-sub000/pkg/db"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.AuthSession{},
		&models.Test{},
		&models.TestSession{},
		&models.SessionParticipant{},
	); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventTopic)
	defer producer.Close()

	gormRepo := &repo.GormRepo{DB: database}

	participantSvc := &service.ParticipantService{
		Repo:        gormRepo,
		ESIndex:     cfg.ESParticipantIndex,
		FrontendURL: cfg.FrontendURL,
	}
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		participantSvc.ES = esClient
	}

	detail := !cfg.IsProduction()

	deps := &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:          gormRepo,
				Events:        producer,
				JWTSecret:     cfg.JWTSecret,
				RefreshSecret: cfg.RefreshSecret,
			},
			Detail: detail,
		},
		Sessions: &httpserver.SessionHTTP{
			Mgr:    &service.SessionManager{Repo: gormRepo, Events: producer},
			Detail: detail,
		},
		Tests: &httpserver.TestHTTP{
			Svc:    &service.TestService{Repo: gormRepo},
			Detail: detail,
		},
		TestSessions: &httpserver.TestSessionHTTP{
			Svc:    &service.TestSessionService{Repo: gormRepo, Events: producer},
			Detail: detail,
		},
		Participants: &httpserver.ParticipantHTTP{
			Svc:    participantSvc,
			Detail: detail,
		},
		AuthMW: middleware.NewAuthMiddleware(gormRepo, cfg.JWTSecret),
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
