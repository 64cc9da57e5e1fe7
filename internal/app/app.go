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
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/catalogue"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/events"
	"github.com/metinatakli/cinex/internal/mailer"
	appmiddleware "github.com/metinatakli/cinex/internal/middleware"
	"github.com/metinatakli/cinex/internal/occupancy"
	"github.com/metinatakli/cinex/internal/payment"
	"github.com/metinatakli/cinex/internal/repository"
	"github.com/metinatakli/cinex/internal/selection"
	appvalidator "github.com/metinatakli/cinex/internal/validator"
	"github.com/metinatakli/cinex/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const (
	serviceName       = "cinex-api"
	occupancyCacheTTL = 30 * time.Second
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	catalogue       domain.CatalogueProvider
	selections      *selection.Controller
	bookings        *booking.Store
	paymentProvider domain.PaymentLinkProvider
	prices          domain.PriceList

	metrics *bookingMetrics
	limiter *appmiddleware.RateLimiter
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             mailer.SMTPConfig
	Stripe           StripeConfig
	Pricing          PricingConfig
	Limiter          appmiddleware.RateLimitConfig
	AMQPURL          string
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	Migrations   string
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	FailureUrl    string
	// PaymentPageURL is linked instead of Stripe Checkout when no secret key
	// is configured.
	PaymentPageURL string
}

type PricingConfig struct {
	SeatPrice string
	Currency  string
}

func (p PricingConfig) PriceList() (domain.PriceList, error) {
	price, err := decimal.NewFromString(p.SeatPrice)
	if err != nil {
		return domain.PriceList{}, fmt.Errorf("invalid seat price %q: %w", p.SeatPrice, err)
	}

	if price.IsNegative() {
		return domain.PriceList{}, fmt.Errorf("seat price must not be negative")
	}

	return domain.PriceList{SeatPrice: price, Currency: p.Currency}, nil
}

func Run() error {
	// a missing .env file is fine, the environment and flags still apply
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", envOr("CINEX_ENV", "dev"), "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", os.Getenv("CINEX_DB_DSN"), "PostgreSQL DSN, bookings are kept in memory when empty")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	flag.StringVar(&cfg.DB.Migrations, "db-migrations", "file://migrations", "Migrations source applied on startup, empty to skip")

	flag.StringVar(&cfg.Redis.URL, "redis-url", os.Getenv("CINEX_REDIS_URL"), "Redis address, selections and sessions are kept in memory when empty")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", os.Getenv("CINEX_SMTP_HOST"), "SMTP host, receipts are logged when empty")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("CINEX_SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("CINEX_SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineX <no-reply@cinex.metinatakli.net>", "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", os.Getenv("CINEX_STRIPE_KEY"), "Stripe secret key")
	flag.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", os.Getenv("CINEX_STRIPE_WEBHOOK_SECRET"), "Stripe webhook secret")
	flag.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", "https://example.com/success.html", "Stripe payment success page")
	flag.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", "https://example.com/failure.html", "Stripe payment failure page")
	flag.StringVar(&cfg.Stripe.PaymentPageURL, "payment-page-url", "https://example.com/pay.html", "Pay page linked when Stripe is not configured")

	flag.StringVar(&cfg.Pricing.SeatPrice, "seat-price", "12.50", "Price of a single seat")
	flag.StringVar(&cfg.Pricing.Currency, "currency", "USD", "Currency of seat prices")

	flag.Float64Var(&cfg.Limiter.RPS, "limiter-rps", 10, "Rate limiter maximum requests per second per client")
	flag.IntVar(&cfg.Limiter.Burst, "limiter-burst", 20, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", true, "Enable rate limiter")

	flag.StringVar(&cfg.AMQPURL, "amqp-url", os.Getenv("CINEX_AMQP_URL"), "RabbitMQ URL for booking events, events are logged when empty")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("CINEX_OTEL_COLLECTOR_URL"), "OpenTelemetry collector gRPC endpoint")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	prices, err := cfg.Pricing.PriceList()
	if err != nil {
		return err
	}

	shows, err := catalogue.NewFixtureCatalogue()
	if err != nil {
		return err
	}

	var bookingRepo domain.BookingRepository = repository.NewMemoryBookingRepository()

	if cfg.DB.DSN != "" {
		if cfg.DB.Migrations != "" {
			err = MigrateDatabase(cfg.DB.DSN, cfg.DB.Migrations)
			if err != nil {
				return err
			}
		}

		db, err := NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		bookingRepo = repository.NewPostgresBookingRepository(db)
	}

	var (
		selectionRepo domain.SelectionRepository = repository.NewMemorySelectionRepository()
		oracle        domain.OccupancyOracle     = occupancy.NewLedgerOracle(bookingRepo)
		redisClient   *redis.Client
		storeOpts     []booking.Option
	)

	if cfg.Redis.URL != "" {
		redisClient, err = NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		cachedOracle := occupancy.NewCachedOracle(oracle, redisClient, occupancyCacheTTL, logger)

		selectionRepo = repository.NewRedisSelectionRepository(redisClient)
		oracle = cachedOracle
		storeOpts = append(storeOpts, booking.WithInvalidator(cachedOracle))
	}

	var publisher domain.EventPublisher = events.NewLogPublisher(logger)

	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()

		publisher = amqpPublisher
	}

	storeOpts = append(storeOpts, booking.WithPublisher(publisher))

	bookings := booking.NewStore(bookingRepo, logger, storeOpts...)
	selections := selection.NewController(shows, oracle, selectionRepo, bookings, prices, logger)

	var mail mailer.Mailer = mailer.NewLogMailer(logger)
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	}

	var paymentProvider domain.PaymentLinkProvider = payment.NewStaticPaymentProvider(cfg.Stripe.PaymentPageURL)
	if cfg.Stripe.SecretKey != "" {
		paymentProvider = payment.NewStripePaymentProvider(cfg.Stripe.SecretKey, cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl)
	}

	app := NewApp(
		cfg,
		logger,
		appvalidator.NewValidator(),
		mail,
		NewSessionManager(redisClient),
		shows,
		selections,
		bookings,
		paymentProvider,
		prices,
	)

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	catalogue domain.CatalogueProvider,
	selections *selection.Controller,
	bookings *booking.Store,
	paymentProvider domain.PaymentLinkProvider,
	prices domain.PriceList,
) *Application {
	ctx, stop := context.WithCancel(context.Background())

	metrics, err := newBookingMetrics()
	if err != nil {
		logger.Warn("booking metrics disabled", "error", err)
	}

	return &Application{
		config:          cfg,
		logger:          logger,
		validator:       validator,
		mailer:          mailer,
		sessionManager:  sessionManager,
		catalogue:       catalogue,
		selections:      selections,
		bookings:        bookings,
		paymentProvider: paymentProvider,
		prices:          prices,
		metrics:         metrics,
		limiter:         appmiddleware.NewRateLimiter(ctx, cfg.Limiter),
		stop:            stop,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// NewSessionManager keeps guest sessions in Redis when a client is given and
// in process memory otherwise.
func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	if client != nil {
		sessionManager.Store = goredisstore.New(client)
	} else {
		sessionManager.Store = memstore.New()
	}

	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Lifetime = 7 * 24 * time.Hour
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
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

func (app *Application) run() error {
	defer app.stop()

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
			return
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.wg.Wait()
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
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(app.limiter.Handler(app.rateLimitExceededResponse))
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)
	r.Use(app.validateRequest())

	return api.HandlerWithOptions(app, api.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: app.invalidParamResponse,
	})
}
