package entity

import "time"

// Seller is the issuing party (the tenant). SmallBusiness marks the §19 UStG
// Kleinunternehmer status: documents carry no VAT and reference the exemption.
type Seller struct {
	ID            string
	Name          string
	Owner         string // natural person behind the business, optional
	Street        string
	Zip           string
	City          string
	Country       string
	VATID         string // USt-IdNr.
	TaxNumber     string // Steuernummer
	Email         string
	Phone         string
	Fax           string
	IBAN          string
	BIC           string
	BankName      string
	SmallBusiness bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
