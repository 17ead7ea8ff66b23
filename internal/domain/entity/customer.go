package entity

import "time"

// Customer is the buyer on invoices and offers.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	Street    string
	Zip       string
	City      string
	Country   string // free-text country name, mapped to ISO on export
	VATNumber string // USt-IdNr. of the buyer, required for reverse charge
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
