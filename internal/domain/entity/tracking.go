package entity

import "time"

// TechnicianLocation última posición reportada por un técnico.
type TechnicianLocation struct {
	TechnicianID string
	Latitude     float64
	Longitude    float64
	Accuracy     *float64
	RecordedAt   time.Time
}

// TechnicianStatus proyección del mapa de seguimiento: técnico, su última posición y tickets activos.
type TechnicianStatus struct {
	TechnicianID  string
	FullName      string
	Location      *TechnicianLocation
	ActiveTickets []Ticket
}
