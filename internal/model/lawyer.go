package model

// Lawyer represents a row in the `lawyers` candidate table. The table is
// read-only for this service: candidates are listed in bulk and handed to
// the model, which picks one by id.
type Lawyer struct {
	ID           uint64 `json:"id"`           // lawyers.id
	Name         string `json:"name"`         // lawyers.name
	Email        string `json:"email"`        // lawyers.email
	Expertise    string `json:"expertise"`    // lawyers.expertise
	Price        string `json:"price"`        // lawyers.price
	Rating       string `json:"rating"`       // lawyers.rating
	Introduction string `json:"introduction"` // lawyers.introduction
	Location     string `json:"location"`     // lawyers.location
	LawFirm      string `json:"law_firm"`     // lawyers.law_firm
	FirmAddress  string `json:"firm_address"` // lawyers.firm_address
}
