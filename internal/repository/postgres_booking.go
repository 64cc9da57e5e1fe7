package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

const bookingColumns = `
	b.id,
	b.owner_id,
	b.show_id,
	b.time_id,
	b.show_time,
	b.movie_title,
	b.poster_url,
	b.runtime,
	b.amount::text,
	b.currency,
	b.is_paid,
	b.payment_link,
	b.created_at,
	COALESCE(
		(SELECT array_agg(bs.seat_id ORDER BY bs.position)
		FROM booking_seats bs
		WHERE bs.booking_id = b.id),
		'{}'
	)
`

func (p *PostgresBookingRepository) Append(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings (
				id, owner_id, show_id, time_id, show_time, movie_title,
				poster_url, runtime, amount, currency, is_paid, payment_link, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		_, err := tx.Exec(
			ctx,
			query,
			booking.ID,
			booking.OwnerID,
			booking.ShowID,
			booking.TimeID,
			booking.ShowTime,
			booking.MovieTitle,
			booking.PosterURL,
			booking.Runtime,
			booking.Amount,
			booking.Currency,
			booking.IsPaid,
			booking.PaymentLink,
			booking.CreatedAt,
		)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.BookedSeats))
		for i, seat := range booking.BookedSeats {
			rows = append(rows, []any{
				booking.ID,
				booking.ShowID,
				booking.TimeID,
				string(seat),
				i,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "show_id", "time_id", "seat_id", "position"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrSeatOccupied
			}

			return err
		}

		return nil
	})
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking domain.Booking
		amount  string
		seats   []string
	)

	err := row.Scan(
		&booking.ID,
		&booking.OwnerID,
		&booking.ShowID,
		&booking.TimeID,
		&booking.ShowTime,
		&booking.MovieTitle,
		&booking.PosterURL,
		&booking.Runtime,
		&amount,
		&booking.Currency,
		&booking.IsPaid,
		&booking.PaymentLink,
		&booking.CreatedAt,
		&seats,
	)
	if err != nil {
		return nil, err
	}

	booking.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}

	booking.BookedSeats = make([]domain.SeatID, len(seats))
	for i, s := range seats {
		booking.BookedSeats[i] = domain.SeatID(s)
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.owner_id = $1
		ORDER BY b.created_at, b.id
	`

	rows, err := p.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (p *PostgresBookingRepository) Remove(ctx context.Context, bookingID string) error {
	// booking_seats rows go with the booking (ON DELETE CASCADE)
	tag, err := p.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresBookingRepository) SetPaymentLink(ctx context.Context, bookingID, link string) error {
	tag, err := p.db.Exec(ctx, `UPDATE bookings SET payment_link = $1 WHERE id = $2`, link, bookingID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresBookingRepository) MarkPaid(ctx context.Context, bookingID string) error {
	tag, err := p.db.Exec(ctx, `UPDATE bookings SET is_paid = TRUE WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresBookingRepository) SeatsByShowtime(ctx context.Context, showID, timeID string) ([]domain.SeatID, error) {
	query := `
		SELECT seat_id
		FROM booking_seats
		WHERE show_id = $1 AND time_id = $2
		ORDER BY seat_id
	`

	rows, err := p.db.Query(ctx, query, showID, timeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.SeatID, 0)

	for rows.Next() {
		var seat string

		err = rows.Scan(&seat)
		if err != nil {
			return nil, err
		}

		seats = append(seats, domain.SeatID(seat))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
