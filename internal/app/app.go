package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-co-op/gocron/v2"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/kaing615/movie-ticket-booking-sub000/internal/clock"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/domain"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/event"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/mailer"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/repository"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/sweeper"
	appvalidator "github.com/kaing615/movie-ticket-booking-sub000/internal/validator"
	"github.com/kaing615/movie-ticket-booking-sub000/internal/vcs"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	clock          clock.Clock
	publisher      event.Publisher

	showRepo    domain.ShowRepository
	seatRepo    domain.SeatRepository
	holdStore   domain.HoldStore
	ledger      domain.ReservationLedger
	bookingRepo domain.BookingRepository
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	AmqpUrl          string

	DB    DBConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	Hold  HoldConfig
	Sweep SweepConfig
}

type DBConfig struct {
	Dsn          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	Url          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type HoldConfig struct {
	DefaultTTL time.Duration
	MaxSeats   int
}

type SweepConfig struct {
	Interval   time.Duration
	PendingTTL time.Duration
	OrphanTTL  time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")
	flag.StringVar(&cfg.AmqpUrl, "amqp-url", "", "RabbitMQ URL for booking events (empty disables publishing)")

	flag.StringVar(&cfg.DB.Dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.Url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "TicketBox <no-reply@ticketbox.example.com>", "SMTP sender")

	flag.DurationVar(&cfg.Hold.DefaultTTL, "hold-ttl", 5*time.Minute, "Default seat hold duration")
	flag.IntVar(&cfg.Hold.MaxSeats, "hold-max-seats", 8, "Maximum seats per hold")

	flag.DurationVar(&cfg.Sweep.Interval, "sweep-interval", time.Minute, "Interval between expiration sweeps")
	flag.DurationVar(&cfg.Sweep.PendingTTL, "sweep-pending-ttl", 10*time.Minute, "Age at which pending bookings expire")
	flag.DurationVar(&cfg.Sweep.OrphanTTL, "sweep-orphan-ttl", 30*time.Minute, "Age at which unattached seat claims are reclaimed")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher event.Publisher = event.NoopPublisher{}

	if cfg.AmqpUrl != "" {
		publisher, err = event.NewAMQPPublisher(cfg.AmqpUrl)
		if err != nil {
			return err
		}
	}
	defer publisher.Close()

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	app := NewApp(cfg, logger, db, redisClient, smtpMailer, publisher, clock.New())

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	scheduler, err := app.startSweeper()
	if err != nil {
		return err
	}
	defer scheduler.Shutdown()

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	appMailer mailer.Mailer,
	publisher event.Publisher,
	clk clock.Clock) *Application {

	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		mailer:         appMailer,
		sessionManager: NewSessionManager(redisClient),
		clock:          clk,
		publisher:      publisher,
		showRepo:       repository.NewPostgresShowRepository(db),
		seatRepo:       repository.NewPostgresSeatRepository(db),
		holdStore:      repository.NewRedisHoldStore(redisClient, clk),
		ledger:         repository.NewPostgresReservationLedger(db),
		bookingRepo:    repository.NewPostgresBookingRepository(db),
	}
}

func NewSessionManager(client redis.UniversalClient) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client.(*redis.Client))
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) startSweeper() (gocron.Scheduler, error) {
	sw := sweeper.New(
		app.bookingRepo,
		app.ledger,
		app.publisher,
		app.clock,
		app.logger,
		app.config.Sweep.PendingTTL,
		app.config.Sweep.OrphanTTL,
	)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(app.config.Sweep.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			_, err := sw.SweepOnce(ctx)
			if err != nil {
				app.logger.Error("sweep failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()

	return scheduler, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(otelchi.Middleware("ticket-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Get("/shows/{showID}/seats", app.GetShowSeatsHandler)

	r.With(app.requireAuthentication).Route("/shows/{showID}/hold", func(r chi.Router) {
		r.Post("/", app.CreateHoldHandler)
		r.Put("/", app.RefreshHoldHandler)
		r.Delete("/", app.ReleaseHoldHandler)
	})

	r.With(app.requireAuthentication).Route("/shows/{showID}/bookings", func(r chi.Router) {
		r.Post("/", app.CreateBookingHandler)
		r.Post("/confirm", app.ConfirmHoldHandler)
	})

	r.With(app.requireAuthentication).Route("/bookings", func(r chi.Router) {
		r.Get("/", app.GetUserBookingsHandler)
		r.Get("/{bookingID}", app.GetBookingHandler)
		r.Put("/{bookingID}/status", app.UpdateBookingStatusHandler)
		r.Delete("/{bookingID}", app.DeleteBookingHandler)
	})

	r.With(app.requireAuthentication).Get("/tickets/{code}/qr", app.GetTicketQRHandler)

	return r
}
