package repository

import (
	"context"
	"time"

	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
)

// PayrollRepository corridas, detalles y reglas de deducción.
type PayrollRepository interface {
	CreateRun(ctx context.Context, run *entity.PayrollRun) error
	GetRun(ctx context.Context, companyID, id string) (*entity.PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, limit int) ([]entity.PayrollRun, error)
	UpdateRunTotals(ctx context.Context, run *entity.PayrollRun) error
	MarkPaid(ctx context.Context, companyID, id, approverID string, at time.Time) error

	// ReplaceDetails borra los detalles previos de la corrida e inserta los nuevos.
	ReplaceDetails(ctx context.Context, runID string, details []entity.PayrollDetail) error
	ListDetails(ctx context.Context, runID string) ([]entity.PayrollDetail, error)

	ListDeductions(ctx context.Context, companyID string, activeOnly bool) ([]entity.PayrollDeduction, error)
	CreateDeduction(ctx context.Context, d *entity.PayrollDeduction) error
	SetDeductionActive(ctx context.Context, companyID, id string, active bool) error

	// ListApprovedTimeLogs registros aprobados con clock_in en [start, end].
	ListApprovedTimeLogs(ctx context.Context, companyID string, start, end time.Time) ([]entity.TimeLog, error)
	// ListEmployees profiles activos con alguno de los roles.
	ListEmployees(ctx context.Context, companyID string, roles []string) ([]entity.Profile, error)
}
