package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kabbani-home/inventory-api/internal/auth"
	"github.com/kabbani-home/inventory-api/internal/catalog"
	"github.com/kabbani-home/inventory-api/internal/config"
	"github.com/kabbani-home/inventory-api/internal/httpx"
	kafkax "github.com/kabbani-home/inventory-api/internal/kafka"
	"github.com/kabbani-home/inventory-api/internal/postgres"
	"github.com/kabbani-home/inventory-api/internal/redisx"
	"github.com/kabbani-home/inventory-api/internal/reservation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, reservation.TopicInventoryEvents, 1024)
	prod.Start(ctx)

	// Repos & services
	users := &auth.Repo{DB: db}
	if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	guard := &auth.Guard{Secret: cfg.JWTSecret, Users: users, Reject: httpx.WriteError}
	catalogRepo := &catalog.Repo{DB: db}
	svc := &reservation.Service{
		Ledger: &reservation.PgLedger{DB: db},
		Store:  &reservation.PgStore{DB: db},
		Events: &reservation.Publisher{Producer: prod, ServiceName: cfg.ServiceName},
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.AuthHandler{Users: users, Guard: guard, JWTSecret: cfg.JWTSecret, AdminKey: cfg.AdminKey}).Register(router)
	(&httpx.CatalogHandler{Repo: catalogRepo, Redis: rdb, Guard: guard}).Register(router)
	(&httpx.ReservationsHandler{Service: svc, Redis: rdb, Guard: guard}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
