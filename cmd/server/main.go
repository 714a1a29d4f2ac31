package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"provider-booking-api/internal/booking"
	"provider-booking-api/internal/cache"
	"provider-booking-api/internal/config"
	"provider-booking-api/internal/handler"
	"provider-booking-api/internal/jobs"
	"provider-booking-api/internal/metrics"
	"provider-booking-api/internal/middleware"
	"provider-booking-api/internal/notification"
	"provider-booking-api/internal/storage"
	"provider-booking-api/internal/store"
	"provider-booking-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(cfg.Database.URL, -1); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		log.Info("migrations applied")
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("db")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	log.Info("connected to postgres")
	st := store.New(pool)

	// notifications
	mongoClient, err := notification.Connect(ctx, cfg.Mongo.URL)
	if err != nil {
		log.WithError(err).Fatal("mongo")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	notes := notification.NewMongoStore(mongoClient.Database(cfg.Mongo.Database))
	if err := notes.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("mongo indexes")
	}
	notifications := notification.NewService(notes, log)

	// provider cache, optional
	rc := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.TLS)
	if rc != nil {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, provider cache misses until it recovers")
		}
	}
	providers := cache.NewProviderCache(rc, cfg.Redis.ProviderTTL)

	// uploads
	s3c, err := storage.NewS3Client(ctx, storage.Options{
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	})
	if err != nil {
		log.WithError(err).Fatal("s3")
	}
	files := storage.NewBucket(s3c, cfg.Storage.Bucket, cfg.Storage.PublicURL)

	// booking core
	loc, _ := cfg.Location()
	workdays, _ := cfg.Weekdays()
	sched, err := booking.NewSchedule(loc, cfg.Schedule.OpenHour, cfg.Schedule.CloseHour, cfg.Schedule.LunchHour, workdays)
	if err != nil {
		log.WithError(err).Fatal("schedule")
	}
	svc := booking.NewService(st, st, notifications, sched,
		booking.WithLogger(log),
		booking.WithRecorder(metrics.NewBookingMetrics(prometheus.DefaultRegisterer)),
	)

	// jobs
	sch := jobs.NewScheduler(log)
	if err := sch.AddTokenPurge(cfg.Jobs.TokenPurgeSpec, st); err != nil {
		log.WithError(err).Fatal("jobs")
	}
	sch.Start()

	// http
	h := handler.New(handler.Deps{
		Store:         st,
		Booking:       svc,
		Notifications: notifications,
		Providers:     providers,
		Files:         files,
		Log:           log,
	}, handler.Options{
		Secret:         cfg.Auth.JWTSecret,
		AccessTTL:      cfg.Auth.AccessTTL,
		RefreshTTL:     cfg.Auth.RefreshTTL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	router := handler.NewRouter(h, handler.RouterConfig{
		Log:            log,
		Secret:         cfg.Auth.JWTSecret,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimiter:    middleware.NewRateLimiter(ctx, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
		Observer:       metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler: promhttp.Handler(),
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.HTTP.Port).Info("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http")
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	sch.Stop(shutdownCtx)
}
