package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var _ repository.PayrollRepository = (*PayrollRepo)(nil)

// PayrollRepo corridas de nómina, detalles, deducciones y horas aprobadas.
type PayrollRepo struct {
	q Querier
}

// NewPayrollRepository construye el adaptador.
func NewPayrollRepository(q Querier) *PayrollRepo {
	return &PayrollRepo{q: q}
}

const timeLogSelect = `
	SELECT tl.id, tl.company_id, tl.technician_id, COALESCE(p.full_name, ''), tl.ticket_id,
	       tl.clock_in_time, tl.clock_out_time, tl.is_billable,
	       COALESCE(tl.billing_amount, 0), COALESCE(tl.cost_amount, 0),
	       COALESCE(tl.status, 'pending'), COALESCE(tl.time_type, 'regular')
	FROM time_logs tl
	LEFT JOIN profiles p ON p.id = tl.technician_id`

func scanTimeLog(s rowScanner) (entity.TimeLog, error) {
	var t entity.TimeLog
	err := s.Scan(&t.ID, &t.CompanyID, &t.TechnicianID, &t.TechnicianName, &t.TicketID,
		&t.ClockIn, &t.ClockOut, &t.IsBillable,
		&t.BillingAmount, &t.CostAmount,
		&t.Status, &t.TimeType)
	return t, err
}

const payrollRunSelect = `
	SELECT id, company_id, run_number, period_start, period_end, pay_date, status,
	       COALESCE(total_gross_pay, 0), COALESCE(total_deductions, 0), COALESCE(total_net_pay, 0),
	       COALESCE(employee_count, 0), COALESCE(created_by::TEXT, ''), approved_by, approved_at, created_at
	FROM payroll_runs`

func scanPayrollRun(s rowScanner) (entity.PayrollRun, error) {
	var r entity.PayrollRun
	err := s.Scan(&r.ID, &r.CompanyID, &r.RunNumber, &r.PeriodStart, &r.PeriodEnd, &r.PayDate, &r.Status,
		&r.TotalGrossPay, &r.TotalDeductions, &r.TotalNetPay,
		&r.EmployeeCount, &r.CreatedBy, &r.ApprovedBy, &r.ApprovedAt, &r.CreatedAt)
	return r, err
}

// CreateRun inserta la corrida en borrador. Un run_number repetido se reporta como ErrDuplicate.
func (r *PayrollRepo) CreateRun(ctx context.Context, run *entity.PayrollRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = entity.PayrollStatusDraft
	}
	run.CreatedAt = time.Now()
	const query = `
		INSERT INTO payroll_runs
		    (id, company_id, run_number, period_start, period_end, pay_date, status,
		     total_gross_pay, total_deductions, total_net_pay, employee_count, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, 0, 0, $8, $9)`
	_, err := r.q.Exec(ctx, query, run.ID, run.CompanyID, run.RunNumber, run.PeriodStart, run.PeriodEnd,
		run.PayDate, run.Status, run.CreatedBy, run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payroll run: %w", err)
	}
	return nil
}

// GetRun devuelve nil, nil si no existe.
func (r *PayrollRepo) GetRun(ctx context.Context, companyID, id string) (*entity.PayrollRun, error) {
	run, err := scanPayrollRun(r.q.QueryRow(ctx, payrollRunSelect+` WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payroll run: %w", err)
	}
	return &run, nil
}

// ListRuns corridas recientes primero.
func (r *PayrollRepo) ListRuns(ctx context.Context, companyID string, limit int) ([]entity.PayrollRun, error) {
	rows, err := r.q.Query(ctx, payrollRunSelect+` WHERE company_id = $1 ORDER BY period_start DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	return collect(rows, scanPayrollRun)
}

// UpdateRunTotals persiste totales y estado tras procesar.
func (r *PayrollRepo) UpdateRunTotals(ctx context.Context, run *entity.PayrollRun) error {
	const query = `
		UPDATE payroll_runs
		SET status = $3, total_gross_pay = $4, total_deductions = $5, total_net_pay = $6, employee_count = $7
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, run.CompanyID, run.ID, run.Status,
		run.TotalGrossPay, run.TotalDeductions, run.TotalNetPay, run.EmployeeCount)
	if err != nil {
		return fmt.Errorf("update payroll totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkPaid solo aplica a corridas en borrador o aprobadas.
func (r *PayrollRepo) MarkPaid(ctx context.Context, companyID, id, approverID string, at time.Time) error {
	const query = `
		UPDATE payroll_runs
		SET status = 'paid', approved_by = COALESCE(approved_by, $3), approved_at = COALESCE(approved_at, $4)
		WHERE company_id = $1 AND id = $2 AND status IN ('draft', 'approved')`
	tag, err := r.q.Exec(ctx, query, companyID, id, approverID, at)
	if err != nil {
		return fmt.Errorf("mark payroll paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ReplaceDetails borra e inserta en un batch; debe correr dentro de la transacción de nómina.
func (r *PayrollRepo) ReplaceDetails(ctx context.Context, runID string, details []entity.PayrollDetail) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM payroll_details WHERE payroll_run_id = $1`, runID)
	const insert = `
		INSERT INTO payroll_details
		    (id, payroll_run_id, employee_id, regular_hours, overtime_hours, regular_pay, overtime_pay,
		     gross_pay, total_deductions, net_pay)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range details {
		d := &details[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.PayrollRunID = runID
		batch.Queue(insert, d.ID, runID, d.EmployeeID, d.RegularHours, d.OvertimeHours, d.RegularPay,
			d.OvertimePay, d.GrossPay, d.TotalDeductions, d.NetPay)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("replace payroll details: %w", err)
		}
	}
	return nil
}

// ListDetails detalles con el nombre del empleado.
func (r *PayrollRepo) ListDetails(ctx context.Context, runID string) ([]entity.PayrollDetail, error) {
	const query = `
		SELECT d.id, d.payroll_run_id, d.employee_id, COALESCE(p.full_name, ''),
		       d.regular_hours, d.overtime_hours, d.regular_pay, d.overtime_pay,
		       d.gross_pay, d.total_deductions, d.net_pay
		FROM payroll_details d
		LEFT JOIN profiles p ON p.id = d.employee_id
		WHERE d.payroll_run_id = $1
		ORDER BY p.full_name`
	rows, err := r.q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list payroll details: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.PayrollDetail, error) {
		var d entity.PayrollDetail
		err := s.Scan(&d.ID, &d.PayrollRunID, &d.EmployeeID, &d.EmployeeName,
			&d.RegularHours, &d.OvertimeHours, &d.RegularPay, &d.OvertimePay,
			&d.GrossPay, &d.TotalDeductions, &d.NetPay)
		return d, err
	})
}

// ListDeductions reglas de deducción de la empresa.
func (r *PayrollRepo) ListDeductions(ctx context.Context, companyID string, activeOnly bool) ([]entity.PayrollDeduction, error) {
	const query = `
		SELECT id, company_id, name, deduction_type, calculation_method, amount,
		       COALESCE(is_pre_tax, FALSE), COALESCE(is_active, TRUE), created_at
		FROM payroll_deductions
		WHERE company_id = $1 AND ($2 = FALSE OR COALESCE(is_active, TRUE))
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list deductions: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.PayrollDeduction, error) {
		var d entity.PayrollDeduction
		err := s.Scan(&d.ID, &d.CompanyID, &d.Name, &d.DeductionType, &d.CalculationMethod, &d.Amount,
			&d.IsPreTax, &d.IsActive, &d.CreatedAt)
		return d, err
	})
}

// CreateDeduction inserta una regla activa.
func (r *PayrollRepo) CreateDeduction(ctx context.Context, d *entity.PayrollDeduction) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.IsActive = true
	d.CreatedAt = time.Now()
	const query = `
		INSERT INTO payroll_deductions
		    (id, company_id, name, deduction_type, calculation_method, amount, is_pre_tax, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)`
	_, err := r.q.Exec(ctx, query, d.ID, d.CompanyID, d.Name, d.DeductionType, d.CalculationMethod, d.Amount, d.IsPreTax, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deduction: %w", err)
	}
	return nil
}

// SetDeductionActive activa o desactiva una regla.
func (r *PayrollRepo) SetDeductionActive(ctx context.Context, companyID, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE payroll_deductions SET is_active = $3 WHERE company_id = $1 AND id = $2`, companyID, id, active)
	if err != nil {
		return fmt.Errorf("set deduction active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListApprovedTimeLogs registros aprobados y cerrados del período.
func (r *PayrollRepo) ListApprovedTimeLogs(ctx context.Context, companyID string, start, end time.Time) ([]entity.TimeLog, error) {
	rows, err := r.q.Query(ctx, timeLogSelect+`
		WHERE tl.company_id = $1 AND tl.status = 'approved' AND tl.clock_out_time IS NOT NULL
		  AND tl.clock_in_time BETWEEN $2 AND $3
		ORDER BY tl.technician_id, tl.clock_in_time`, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list approved time logs: %w", err)
	}
	return collect(rows, scanTimeLog)
}

// ListEmployees profiles activos de los roles dados.
func (r *PayrollRepo) ListEmployees(ctx context.Context, companyID string, roles []string) ([]entity.Profile, error) {
	const query = `
		SELECT id, company_id, COALESCE(full_name, ''), COALESCE(email, ''), role, COALESCE(is_active, TRUE), created_at
		FROM profiles
		WHERE company_id = $1 AND role = ANY($2) AND COALESCE(is_active, TRUE)
		ORDER BY full_name`
	rows, err := r.q.Query(ctx, query, companyID, roles)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return collect(rows, func(s rowScanner) (entity.Profile, error) {
		var p entity.Profile
		err := s.Scan(&p.ID, &p.CompanyID, &p.FullName, &p.Email, &p.Role, &p.IsActive, &p.CreatedAt)
		return p, err
	})
}
