// Package api holds the HTTP contract of the service: the OpenAPI document,
// its request and response types and the chi server binding.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type SelectionStatus string

const (
	NoTimeSelected SelectionStatus = "no_time_selected"
	TimeSelected   SelectionStatus = "time_selected"
	SeatsPicked    SelectionStatus = "seats_picked"
)

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type ShowSummary struct {
	Id          string             `json:"id"`
	Title       string             `json:"title"`
	PosterUrl   string             `json:"posterUrl"`
	BackdropUrl string             `json:"backdropUrl"`
	Genres      []string           `json:"genres"`
	Rating      float64            `json:"rating"`
	Runtime     int                `json:"runtime"`
	ReleaseDate openapi_types.Date `json:"releaseDate"`
}

type ShowListResponse struct {
	Shows []ShowSummary `json:"shows"`
}

type TimeSlot struct {
	Time   time.Time `json:"time"`
	TimeId string    `json:"timeId"`
}

type ShowDetail struct {
	Id          string                `json:"id"`
	Title       string                `json:"title"`
	Overview    string                `json:"overview"`
	PosterUrl   string                `json:"posterUrl"`
	BackdropUrl string                `json:"backdropUrl"`
	TrailerUrl  string                `json:"trailerUrl"`
	Genres      []string              `json:"genres"`
	Cast        []CastMember          `json:"cast"`
	Language    string                `json:"language"`
	Rating      float64               `json:"rating"`
	Runtime     int                   `json:"runtime"`
	ReleaseDate openapi_types.Date    `json:"releaseDate"`
	DateTimes   map[string][]TimeSlot `json:"dateTimes"`
}

type CastMember struct {
	Name       string  `json:"name"`
	ProfileUrl *string `json:"profileUrl,omitempty"`
}

type ShowDetailResponse struct {
	Show ShowDetail `json:"show"`
}

type ShowTimesResponse struct {
	ShowId string             `json:"showId"`
	Date   openapi_types.Date `json:"date"`
	Times  []TimeSlot         `json:"times"`
}

type Seat struct {
	Id       string `json:"id"`
	Occupied bool   `json:"occupied"`
	Selected bool   `json:"selected"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type RowGroup struct {
	Rows []SeatRow `json:"rows"`
}

type SeatLayoutResponse struct {
	ShowId       string     `json:"showId"`
	SelectedTime *TimeSlot  `json:"selectedTime,omitempty"`
	Loading      bool       `json:"loading"`
	Degraded     bool       `json:"degraded"`
	RowGroups    []RowGroup `json:"rowGroups"`
}

type SelectionResponse struct {
	ShowId        string          `json:"showId"`
	Status        SelectionStatus `json:"status"`
	SelectedTime  *TimeSlot       `json:"selectedTime,omitempty"`
	SelectedSeats []string        `json:"selectedSeats"`
	OccupiedSeats []string        `json:"occupiedSeats"`
	Loading       bool            `json:"loading"`
	Degraded      bool            `json:"degraded"`
	TotalPrice    string          `json:"totalPrice"`
	Currency      string          `json:"currency"`
}

type SelectTimeRequest struct {
	TimeId string `json:"timeId" validate:"required,time_id"`
}

type ConfirmSelectionRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type ConfirmSelectionResponse struct {
	BookingId string `json:"bookingId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type FavoriteResponse struct {
	ShowId   string `json:"showId"`
	Favorite bool   `json:"favorite"`
}

type Trailer struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	ImageUrl string `json:"imageUrl"`
	VideoUrl string `json:"videoUrl"`
}

type TrailerListResponse struct {
	Trailers []Trailer `json:"trailers"`
}

type Booking struct {
	Id          string    `json:"id"`
	ShowId      string    `json:"showId"`
	TimeId      string    `json:"timeId"`
	ShowTime    time.Time `json:"showTime"`
	MovieTitle  string    `json:"movieTitle"`
	PosterUrl   string    `json:"posterUrl"`
	Runtime     int       `json:"runtime"`
	BookedSeats []string  `json:"bookedSeats"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	IsPaid      bool      `json:"isPaid"`
	PaymentLink *string   `json:"paymentLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BookingListResponse struct {
	Bookings []Booking `json:"bookings"`
}

type PaymentLinkResponse struct {
	BookingId   string `json:"bookingId"`
	PaymentLink string `json:"paymentLink"`
}
