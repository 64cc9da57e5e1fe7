package domain

import "github.com/shopspring/decimal"

type PriceList struct {
	SeatPrice decimal.Decimal
	Currency  string
}

func (p PriceList) Total(seats int) decimal.Decimal {
	return p.SeatPrice.Mul(decimal.NewFromInt(int64(seats)))
}
