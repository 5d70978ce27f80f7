// Package api defines the JSON request and response contracts exposed by
// the booking service.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

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
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type Seat struct {
	Id         int64           `json:"id"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Label      string          `json:"label"`
	Type       string          `json:"type"`
	Price      decimal.Decimal `json:"price"`
	Disabled   bool            `json:"disabled"`
	Available  bool            `json:"available"`
}

// SeatMapResponse reports seat availability for one show. ServerTime lets
// clients compute hold countdowns correctly despite clock skew.
type SeatMapResponse struct {
	ShowId     int64     `json:"showId"`
	Seats      []Seat    `json:"seats"`
	Sold       []int64   `json:"sold"`
	Held       []int64   `json:"held"`
	ServerTime time.Time `json:"serverTime"`
}

type CreateHoldRequest struct {
	SeatIdList []int64 `json:"seatIds" validate:"required,min=1,max=8,unique,dive,gt=0"`
	TtlSeconds int     `json:"ttlSeconds" validate:"omitempty,min=60,max=900"`
}

type RefreshHoldRequest struct {
	TtlSeconds int `json:"ttlSeconds" validate:"omitempty,min=60,max=900"`
}

type Hold struct {
	ShowId    int64     `json:"showId"`
	SeatIds   []int64   `json:"seatIds"`
	ExpiresAt time.Time `json:"expiresAt"`
	HoldTime  int       `json:"holdTime"`
}

type HoldResponse struct {
	Hold Hold `json:"hold"`
}

type CreateBookingRequest struct {
	SeatIdList []int64 `json:"seatIds" validate:"required,min=1,max=8,unique,dive,gt=0"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid cancelled refunded"`
}

type Ticket struct {
	Id     int64           `json:"id"`
	SeatId int64           `json:"seatId"`
	Price  decimal.Decimal `json:"price"`
	Code   string          `json:"code"`
	Status string          `json:"status"`
}

type Booking struct {
	Id         int64           `json:"id"`
	ShowId     int64           `json:"showId"`
	SeatIds    []int64         `json:"seatIds"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	Tickets    []Ticket        `json:"tickets"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type BookingSummary struct {
	Id         int64           `json:"id"`
	ShowId     int64           `json:"showId"`
	ShowTitle  string          `json:"showTitle"`
	ShowStart  time.Time       `json:"showStart"`
	SeatCount  int             `json:"seatCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
