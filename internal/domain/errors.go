package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrShowNotFound         = errors.New("show not found")
	ErrTimeSlotNotFound     = errors.New("show time not found for this show")
	ErrInvalidSeat          = errors.New("seat does not exist in the hall layout")
	ErrNoTimeSelected       = errors.New("please select a time first")
	ErrSeatOccupied         = errors.New("this seat is already booked")
	ErrSelectionLimit       = errors.New("you can only select 5 seats")
	ErrIncompleteSelection  = errors.New("please select time and seats")
	ErrOccupancyLoading     = errors.New("seat availability is still loading, please try again")
	ErrOccupancyUnavailable = errors.New("seat availability could not be verified, please select the time again")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrUnpaidBooking        = errors.New("booking has not been paid yet")
	ErrAlreadyPaid          = errors.New("booking is already paid")
)
