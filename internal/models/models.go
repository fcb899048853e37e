package models

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Known lead statuses. The backend treats estado as an open string: new
// values coming from the form provider must still bucket under their
// literal value.
const (
	StatusIncomplete = "Formulario incompleto"
	StatusComplete   = "Formulario completo"
	StatusContacted  = "Contactado"
	StatusQualified  = "Calificado"
	StatusPending    = "Pendiente"
	StatusNotFit     = "No apto"
)

// UnknownBucket collects leads with a blank pais or estado field.
const UnknownBucket = "Unknown"

// Money tolerates the sloppy cash_collected column: numbers, numeric
// strings, empty strings and nulls all decode without error. Anything
// unparseable counts as zero.
type Money float64

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*m = 0
		return nil
	}
	*m = Money(f)
	return nil
}

type Lead struct {
	ID             string `json:"id,omitempty"` // puede faltar en filas legadas
	Name           string `json:"nombre"`
	Phone          string `json:"telefono"`
	Country        string `json:"pais"`
	Interest       string `json:"interes"`
	Profile        string `json:"perfil"`
	Challenges     string `json:"desafios"`
	Budget         string `json:"presupuesto"`
	Availability   string `json:"disponibilidad"`
	Commitment     string `json:"compromiso"`
	Experience     string `json:"antiguedad"`
	RegisteredDate string `json:"fecha_registro"` // YYYY-MM-DD, lexical order == chronological order
	RegisteredTime string `json:"hora_registro,omitempty"`
	Status         string `json:"estado"`
	Qualifies      string `json:"califica,omitempty"` // "si" / "no" / anything else
	CashCollected  Money  `json:"cash_collected,omitempty"`
	Score          *int   `json:"score,omitempty"`
}

// QualifiesNorm returns the trimmed, case-folded califica value used for
// qualified/not-qualified counting.
func (l Lead) QualifiesNorm() string {
	return strings.ToLower(strings.TrimSpace(l.Qualifies))
}

type Student struct {
	ID            int     `json:"id,omitempty"`
	Name          string  `json:"nombre"`
	Surname       string  `json:"apellidos"`
	Phone         string  `json:"telefono"`
	Email         string  `json:"email"`
	Country       string  `json:"pais"`
	OverallStatus string  `json:"estado_general"`
	TotalInvested float64 `json:"inversion_total"`
	PendingAmount float64 `json:"importe_pendiente"`
	PurchaseDate  string  `json:"fecha_compra"`
	Course        string  `json:"curso"`
	Notes         string  `json:"notas,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type HourlyBucket struct {
	Hour  string `json:"hour"` // "0:00".."23:00"
	Count int    `json:"count"`
}

type DailyPoint struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Qualified    int    `json:"qualified"`
	NotQualified int    `json:"notQualified"`
}

type CountryRow struct {
	Country      string  `json:"country"`
	Total        int     `json:"total"`
	Qualified    int     `json:"qualified"`
	NotQualified int     `json:"notQualified"`
	SuccessRate  float64 `json:"successRate"`
}

// DashboardStats is a derived snapshot, recomputed on every call. It is
// never persisted.
type DashboardStats struct {
	TotalLeads     int            `json:"totalLeads"`
	LeadsToday     int            `json:"leadsToday"`
	Qualified      int            `json:"qualified"`
	NotQualified   int            `json:"notQualified"`
	Contacted      int            `json:"contacted"`
	ContactRate    float64        `json:"contactRate"`
	CashCollected  float64        `json:"cashCollected"`
	TopInterest    string         `json:"topInterest"`
	TopCountry     string         `json:"topCountry"`
	ByStatus       []StatusCount  `json:"byStatus"`
	ByInterest     []StatusCount  `json:"byInterest"`
	HourlyActivity []HourlyBucket `json:"hourlyActivity"`
	DailySeries    []DailyPoint   `json:"dailySeries"`
	ByCountry      []CountryRow   `json:"byCountry"`
}
