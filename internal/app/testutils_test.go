package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/catalogue"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/mailer"
	appmiddleware "github.com/metinatakli/cinex/internal/middleware"
	"github.com/metinatakli/cinex/internal/mocks"
	"github.com/metinatakli/cinex/internal/occupancy"
	"github.com/metinatakli/cinex/internal/repository"
	"github.com/metinatakli/cinex/internal/selection"
	"github.com/metinatakli/cinex/internal/validator"
	"github.com/shopspring/decimal"
)

const (
	testShowID  = "68395b407f6329be2bb45bd1"
	testTimeID  = "68395b407f6329be2bb45bd1-0724-0100"
	otherTimeID = "68395b407f6329be2bb45bd1-0725-1800"
	unknownShow = "000000000000000000000000"
)

var testPrices = domain.PriceList{
	SeatPrice: decimal.RequireFromString("12.00"),
	Currency:  "USD",
}

type testApp struct {
	*Application
	bookingRepo  domain.BookingRepository
	mockMailer   *mailer.MockMailer
	mockPayments *mocks.MockPaymentProvider
	publisher    *mocks.MockEventPublisher
}

// newTestApplication wires the application to in-memory storage, the fixture
// catalogue and mocked integrations.
func newTestApplication(t *testing.T, opts ...func(*Application)) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shows, err := catalogue.NewFixtureCatalogue()
	if err != nil {
		t.Fatalf("failed to load catalogue: %v", err)
	}

	bookingRepo := repository.NewMemoryBookingRepository()
	publisher := &mocks.MockEventPublisher{}
	bookings := booking.NewStore(bookingRepo, logger, booking.WithPublisher(publisher))
	selections := selection.NewController(
		shows,
		occupancy.NewLedgerOracle(bookingRepo),
		repository.NewMemorySelectionRepository(),
		bookings,
		testPrices,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ta := &testApp{
		bookingRepo:  bookingRepo,
		mockMailer:   mailer.NewMockMailer(),
		mockPayments: &mocks.MockPaymentProvider{},
		publisher:    publisher,
	}

	ta.Application = &Application{
		config:          Config{Env: "test"},
		logger:          logger,
		validator:       validator.NewValidator(),
		mailer:          ta.mockMailer,
		sessionManager:  scs.New(),
		catalogue:       shows,
		selections:      selections,
		bookings:        bookings,
		paymentProvider: ta.mockPayments,
		prices:          testPrices,
		limiter:         appmiddleware.NewRateLimiter(ctx, appmiddleware.RateLimitConfig{}),
		stop:            cancel,
	}

	for _, opt := range opts {
		opt(ta.Application)
	}

	return ta
}

// setupTestSession loads the guest session identified by token into the
// request, a new guest session is created for an empty token. The returned
// token is the session cookie value, app.contextGetOwner gives the guest id.
func setupTestSession(t *testing.T, app *Application, r *http.Request, token string) (*http.Request, string) {
	t.Helper()

	ctx, err := app.sessionManager.Load(r.Context(), token)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	if token == "" {
		app.sessionManager.Put(ctx, SessionKeyGuest.String(), uuid.New().String())

		token, _, err = app.sessionManager.Commit(ctx)
		if err != nil {
			t.Fatalf("Failed to commit session: %v", err)
		}
	}

	return r.WithContext(ctx), token
}

// ownerOf returns the guest id stored in the session behind token.
func (ta *testApp) ownerOf(t *testing.T, token string) string {
	t.Helper()

	ctx, err := ta.sessionManager.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	owner := ta.sessionManager.GetString(ctx, SessionKeyGuest.String())
	if owner == "" {
		t.Fatalf("session %q has no guest id", token)
	}

	return owner
}

// serve runs handler inside the session middleware so session changes are
// committed for the next request of the same guest.
func serve(app *Application, w http.ResponseWriter, r *http.Request, handler http.HandlerFunc) {
	app.sessionManager.LoadAndSave(handler).ServeHTTP(w, r)
}

// bookSeats books seats for the guest owner through the selection flow and
// returns the booking.
func bookSeats(t *testing.T, ta *testApp, owner string, seats ...string) *domain.Booking {
	t.Helper()

	ctx := context.Background()
	key := domain.SelectionKey{SessionID: owner, ShowID: testShowID}

	_, err := ta.selections.SelectTime(ctx, key, testTimeID)
	if err != nil {
		t.Fatalf("failed to select time: %v", err)
	}

	for _, seat := range seats {
		_, err = ta.selections.ToggleSeat(ctx, key, seat)
		if err != nil {
			t.Fatalf("failed to select seat %s: %v", seat, err)
		}
	}

	b, err := ta.selections.Confirm(ctx, key, owner)
	if err != nil {
		t.Fatalf("failed to confirm selection: %v", err)
	}

	return b
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}

		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func mustParseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}

	return t
}

func ptr[T any](v T) *T {
	return &v
}
