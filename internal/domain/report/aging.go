package report

import (
	"math"
	"time"
)

// Buckets de antigüedad de cartera, en orden.
const (
	BucketCurrent = "Current"
	Bucket1To30   = "1-30 days"
	Bucket31To60  = "31-60 days"
	Bucket61To90  = "61-90 days"
	Bucket90Plus  = "90+ days"
)

// AgingBuckets orden de presentación.
var AgingBuckets = []string{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// ClassifyAging asigna el bucket según días de vencida. Cero o negativo es Current;
// los límites superiores (30, 60, 90) son inclusivos.
func ClassifyAging(daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// DaysOverdue días completos transcurridos desde el vencimiento hasta asOf (negativo si aún no vence).
func DaysOverdue(due, asOf time.Time) int {
	return int(math.Floor(asOf.Sub(due).Hours() / 24))
}
