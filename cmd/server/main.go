package main // Entry point package

import (
	"context"   // Cancellation for the activity consumer and shutdown
	"errors"    // Distinguish a normal server close
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed
	"os"        // Signal source
	"os/signal" // Ctrl-C / SIGTERM handling
	"syscall"   // SIGTERM
	"time"      // Shutdown grace period and time zones

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Request logging and panic recovery

	"github.com/parliamentplating/reservations-web/internal/activity"    // Activity events over RabbitMQ
	"github.com/parliamentplating/reservations-web/internal/apiclient"   // Reservations API client
	"github.com/parliamentplating/reservations-web/internal/calendar"    // Calendar exports
	"github.com/parliamentplating/reservations-web/internal/config"      // Internal config loader
	"github.com/parliamentplating/reservations-web/internal/handler"     // Page handlers
	"github.com/parliamentplating/reservations-web/internal/middleware"  // Session, cache and rate-limit middleware
	"github.com/parliamentplating/reservations-web/internal/reservation" // Proof upload flow
	"github.com/parliamentplating/reservations-web/internal/router"      // Internal router setup
	"github.com/parliamentplating/reservations-web/internal/session"     // Server-side sessions
)

func main() {
	config.LoadDotEnv()  // Read .env when present
	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs sessions, the page cache and the rate limiter.  Without it
	// sessions live in memory and caching is off.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, "")
		defer rdb.Close()
	} else {
		log.Printf("redis unavailable: sessions are kept in memory, page cache disabled")
		store = session.NewMemoryStore()
	}
	sessions := &session.Manager{
		Store:      store,
		Secret:     []byte(cfg.SessionSecret),
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
	}

	loc, err := time.LoadLocation(cfg.CalendarTZ)
	if err != nil {
		log.Printf("calendar time zone %q: %v; using UTC", cfg.CalendarTZ, err)
		loc = time.UTC
	}

	// Activity events are published to RabbitMQ and written to the activity
	// log by the consumer running alongside the server.
	var publisher activity.Publisher = activity.NopPublisher{}
	if cfg.ActivityEnabled {
		amqpPub := activity.NewAMQPPublisher(config.BrokerURL())
		defer amqpPub.Close()
		publisher = amqpPub
		go func() {
			if err := activity.StartConsumer(ctx, config.BrokerURL(), cfg.ActivityLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("activity consumer stopped: %v", err)
			}
		}()
	}
	events := activity.NewQueue(publisher, activity.DefaultQueueSize)
	defer events.Close()

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	h := &handler.Handler{
		Client: apiclient.New(apiclient.Options{
			BaseURL:          cfg.APIBaseURL,
			Timeout:          cfg.APITimeout,
			UploadTimeout:    cfg.APIUploadTimeout,
			OnSessionExpired: session.MarkExpired,
		}),
		Sessions:      sessions,
		Uploads:       reservation.NewFlow(cfg.ProofRetention),
		Calendar:      calendar.Builder{UIDDomain: cfg.CalendarUIDDomain, TimeZone: cfg.CalendarTZ},
		Location:      loc,
		Activity:      events,
		Cache:         cache,
		PublicBaseURL: cfg.PublicBaseURL,
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.LoadSession(sessions))

	rl := config.LoadRateLimitConfig()
	limit := middleware.NewTokenBucket(rl, rdb)
	authLimit := middleware.NewTokenBucket(rl.ForAuth(), rdb)
	router.RegisterRoutes(e)                  // Health check
	router.RegisterPublic(e, h, cache, limit) // Events and reservations
	router.RegisterAuth(e, h, authLimit)      // Login, register, profile
	router.RegisterAdmin(e, h)                // Back-office

	addr := ":" + cfg.Port // Address string with port
	log.Printf("listening on %s (env=%s, api=%s)", addr, cfg.Env, cfg.APIBaseURL)

	// Start HTTP server; log and exit if it fails.
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
