package report

import (
	"fmt"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange período [Start, End] de un reporte.
// AsOf es el instante de referencia para vencimientos (normalmente "ahora"); se fija al construir
// el rango para que los reductores sean funciones puras.
type DateRange struct {
	Start time.Time
	End   time.Time
	AsOf  time.Time
}

// NewRange construye un rango explícito.
func NewRange(start, end, asOf time.Time) DateRange {
	return DateRange{Start: start, End: end, AsOf: asOf}
}

// ParseRange convierte fechas YYYY-MM-DD en un rango; aplica valores por defecto si están vacías:
// inicio = primer día del mes de now, fin = now. Una fecha de fin explícita es inclusiva hasta las 23:59:59.
func ParseRange(startStr, endStr string, now time.Time) (DateRange, error) {
	var start, end time.Time
	var err error

	if endStr == "" {
		end = now
	} else {
		end, err = time.ParseInLocation(dateLayout, endStr, now.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("end_date inválido: %w", err)
		}
		end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation(dateLayout, startStr, now.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("start_date inválido: %w", err)
		}
	}

	if start.After(end) {
		return DateRange{}, fmt.Errorf("start_date no puede ser posterior a end_date")
	}
	return DateRange{Start: start, End: end, AsOf: now}, nil
}

// Days número de días del período, redondeado hacia arriba.
func (r DateRange) Days() int {
	d := r.End.Sub(r.Start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Prior período inmediatamente anterior de igual duración: [Start-(End-Start), Start).
func (r DateRange) Prior() DateRange {
	span := r.End.Sub(r.Start)
	return DateRange{Start: r.Start.Add(-span), End: r.Start, AsOf: r.AsOf}
}

// Contains informa si t cae dentro del rango (extremos inclusivos).
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Period representación serializable del rango.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Period devuelve las fechas en formato YYYY-MM-DD.
func (r DateRange) Period() Period {
	return Period{StartDate: r.Start.Format(dateLayout), EndDate: r.End.Format(dateLayout)}
}
