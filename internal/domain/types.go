package domain

import "time"

// Meeting purpose values.
const (
	PurposeLease = "lease"
	PurposeRent  = "rent"
	PurposeSale  = "sale"
)

// Meeting status values.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// PropertyVisit contact types.
const (
	ContactLandlord = "landlord"
	ContactAgency   = "agency"
	ContactTenant   = "tenant"
)

// PropertyVisit status values.
const (
	VisitUnchecked = "unchecked"
	VisitViewable  = "viewable"
	VisitChecking  = "checking"
	VisitHold      = "hold"
)

// MaxPhotosPerProperty caps photo attachments per property visit. The cap
// is enforced at the edit boundary, not by storage.
const MaxPhotosPerProperty = 2

// Building is one row of the local reference table used for address
// auto-suggestion. Attrs carries any extra columns from the imported
// dataset verbatim.
type Building struct {
	ID      int64             `json:"id"`
	Name    string            `json:"name"`
	Address string            `json:"address"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// Meeting is one customer visit session. Properties are embedded and owned
// by the meeting; they have no independent identity or lifecycle.
type Meeting struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	Date         string          `json:"date"`
	Purpose      string          `json:"purpose"`
	Status       string          `json:"status"`
	Properties   []PropertyVisit `json:"properties"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// PropertyVisit is one inspected unit within a meeting. Photos holds opaque
// media locators. BuildingInfo is a snapshot copied from a Building record
// at selection time; it is nil when the address was typed manually.
type PropertyVisit struct {
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	VisitTime        string    `json:"visitTime"`
	ContactType      string    `json:"contactType"`
	Contact          string    `json:"contact"`
	Status           string    `json:"status"`
	Photos           []string  `json:"photos"`
	BuildingInfo     *Building `json:"buildingInfo,omitempty"`
	VisitNotes       []string  `json:"visitNotes"`
	CustomerReaction string    `json:"customerReaction"`
}
