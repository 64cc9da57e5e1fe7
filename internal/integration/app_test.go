package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/app"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/catalogue"
	"github.com/metinatakli/cinex/internal/mailer"
	"github.com/metinatakli/cinex/internal/mocks"
	"github.com/metinatakli/cinex/internal/occupancy"
	"github.com/metinatakli/cinex/internal/payment"
	"github.com/metinatakli/cinex/internal/repository"
	"github.com/metinatakli/cinex/internal/selection"
	appvalidator "github.com/metinatakli/cinex/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Mailer      *mailer.MockMailer
	Publisher   *mocks.MockEventPublisher
}

// newTestApp wires the application the way Run does when PostgreSQL and
// Redis are configured.
func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mailer := mailer.NewMockMailer()
	publisher := &mocks.MockEventPublisher{}

	prices, err := cfg.Pricing.PriceList()
	if err != nil {
		return nil, err
	}

	shows, err := catalogue.NewFixtureCatalogue()
	if err != nil {
		return nil, err
	}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	bookingRepo := repository.NewPostgresBookingRepository(db)
	oracle := occupancy.NewCachedOracle(occupancy.NewLedgerOracle(bookingRepo), redisClient, time.Minute, logger)

	bookings := booking.NewStore(
		bookingRepo,
		logger,
		booking.WithPublisher(publisher),
		booking.WithInvalidator(oracle),
	)

	selections := selection.NewController(
		shows,
		oracle,
		repository.NewRedisSelectionRepository(redisClient),
		bookings,
		prices,
		logger,
	)

	application := app.NewApp(
		cfg,
		logger,
		appvalidator.NewValidator(),
		mailer,
		app.NewSessionManager(redisClient),
		shows,
		selections,
		bookings,
		payment.NewStaticPaymentProvider(cfg.Stripe.PaymentPageURL),
		prices,
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Mailer:      mailer,
		Publisher:   publisher,
	}, nil
}
