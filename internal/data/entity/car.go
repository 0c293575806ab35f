package entity

type Car struct {
	Base
	Brand       string  `db:"brand"`
	Model       string  `db:"model"`
	Year        int     `db:"year"`
	PricePerDay float64 `db:"price_per_day"`
	IsAvailable bool    `db:"is_available"`
}
