package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "nganya/internal/config"
	intdb "nganya/internal/db"
	router "nganya/internal/http"
	"nganya/internal/http/handlers"
	"nganya/internal/realtime"
	"nganya/internal/repositories"
	"nganya/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer intconfig.CloseDB()

	if err := intdb.Migrate(context.Background(), db); err != nil {
		log.Fatalf("schema migration failed: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	drivers := repositories.DriverRepository{DB: db}
	passengers := repositories.PassengerRepository{DB: db}
	bookings := repositories.BookingRepository{DB: db}

	hub := realtime.NewHub()
	if env.RedisURL != "" {
		client, err := realtime.ConnectRedis(ctx, env.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer client.Close()

		bridge := realtime.NewRedisBridge(client, realtime.DefaultBridgeChannel)
		hub.SetForwarder(bridge)
		go func() {
			if err := bridge.Run(ctx, hub); err != nil && ctx.Err() == nil {
				log.Printf("redis bridge stopped: %v", err)
			}
		}()
		log.Printf("redis bridge enabled node=%s", bridge.Node())
	}

	presence := services.NewPresenceRegistry(drivers, hub)
	manager := realtime.NewManager(hub, presence, env.WSSendBuffer)
	tokens := services.TokenIssuer{Secret: []byte(env.JWTSecret), TTL: env.JWTTTL}

	r := router.NewRouter(router.Deps{
		Env:    env,
		Tokens: tokens,
		Handlers: handlers.Handlers{
			Identity: services.IdentityService{Passengers: passengers, Drivers: drivers, Router: hub, Tokens: tokens},
			Bookings: services.BookingService{Bookings: bookings, Passengers: passengers, Drivers: drivers, Router: hub},
			Presence: presence,
			Tickets:  services.TicketService{Bookings: bookings},
			Realtime: manager,
		},
	})

	// No WriteTimeout: websocket connections outlive a single response and set
	// their own deadlines.
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server running on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
