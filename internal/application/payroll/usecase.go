// Package payroll casos de uso de nómina: períodos, generación a partir de horas aprobadas,
// pago y reglas de deducción.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/intelliservice-api/internal/application/dto"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/internal/domain/entity"
	calc "github.com/jhoicas/intelliservice-api/internal/domain/payroll"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

const (
	runsLimit         = 50
	maxNumberAttempts = 3
	runNumberKind     = "PR"
)

var (
	now          = time.Now
	maxPercent   = decimal.NewFromInt(100)
	errDateOrder = errors.New("period_end no puede ser anterior a period_start")
)

// TxRunner corrida y detalles en la misma transacción.
type TxRunner interface {
	RunPayroll(ctx context.Context, fn func(runs repository.PayrollRepository) error) error
}

// Recorder cuenta los números de documento emitidos.
type Recorder interface {
	DocumentNumber(kind string)
}

type nopRecorder struct{}

func (nopRecorder) DocumentNumber(string) {}

// UseCase casos de uso de nómina.
type UseCase struct {
	tx    TxRunner
	seq   repository.SequenceRepository
	repo  repository.PayrollRepository
	rates calc.Rates
	rec   Recorder
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso con la tarifa horaria plana y el multiplicador de horas extra.
// seq confirma cada número por separado, fuera de cualquier transacción de la corrida.
func NewUseCase(tx TxRunner, seq repository.SequenceRepository, repo repository.PayrollRepository, hourlyRate, overtimeMultiplier float64, rec Recorder, log zerolog.Logger) *UseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &UseCase{
		tx:   tx,
		seq:  seq,
		repo: repo,
		rates: calc.Rates{
			Hourly:             decimal.NewFromFloat(hourlyRate),
			OvertimeMultiplier: decimal.NewFromFloat(overtimeMultiplier),
		},
		rec: rec,
		log: log,
	}
}

// CreatePeriod crea una corrida en borrador con número PR-YYYY-NNNN del consecutivo atómico.
func (uc *UseCase) CreatePeriod(ctx context.Context, companyID, actorID string, in dto.CreatePayrollPeriodRequest) (*dto.PayrollRunResponse, error) {
	start, err1 := time.Parse(dto.DateLayout, in.PeriodStart)
	end, err2 := time.Parse(dto.DateLayout, in.PeriodEnd)
	payDate, err3 := time.Parse(dto.DateLayout, in.PayDate)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, errDateOrder.Error())
	}

	run := &entity.PayrollRun{
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
		PayDate:     payDate,
		Status:      entity.PayrollStatusDraft,
		CreatedBy:   actorID,
	}
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		run.ID = uuid.NewString()
		run.CreatedAt = now().UTC()
		var seq int64
		seq, err = uc.seq.Next(ctx, companyID, fmt.Sprintf("%s-%d", runNumberKind, start.Year()))
		if err != nil {
			break
		}
		run.RunNumber = calc.FormatRunNumber(start.Year(), seq)
		err = uc.repo.CreateRun(ctx, run)
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().Str("company_id", companyID).Str("run_number", run.RunNumber).Int("attempt", attempt).Msg("número de nómina ocupado, reintentando")
	}
	if err != nil {
		return nil, fmt.Errorf("payroll.CreatePeriod: %w", err)
	}
	uc.rec.DocumentNumber(runNumberKind)
	res := dto.PayrollRunFromEntity(run, nil)
	return &res, nil
}

// Generate calcula la nómina del período a partir de los registros de horas aprobados de
// técnicos y despachadores. Reemplaza los detalles previos; todo en una transacción.
func (uc *UseCase) Generate(ctx context.Context, companyID, runID string) (*dto.PayrollRunResponse, error) {
	var (
		run     *entity.PayrollRun
		details []entity.PayrollDetail
	)
	err := uc.tx.RunPayroll(ctx, func(runs repository.PayrollRepository) error {
		var err error
		run, err = runs.GetRun(ctx, companyID, runID)
		if err != nil {
			return err
		}
		if run == nil {
			return domain.ErrNotFound
		}
		if run.Status != entity.PayrollStatusDraft && run.Status != entity.PayrollStatusProcessing {
			return fmt.Errorf("corrida en estado %s: %w", run.Status, domain.ErrConflict)
		}

		periodEnd := endOfDay(run.PeriodEnd)
		logs, err := runs.ListApprovedTimeLogs(ctx, companyID, run.PeriodStart, periodEnd)
		if err != nil {
			return err
		}
		employees, err := runs.ListEmployees(ctx, companyID, entity.PayrollRoles)
		if err != nil {
			return err
		}
		rules, err := runs.ListDeductions(ctx, companyID, true)
		if err != nil {
			return err
		}

		details = buildDetails(run.ID, employees, calc.HoursByEmployee(logs, run.PeriodStart, periodEnd), uc.rates, rules)
		if err := runs.ReplaceDetails(ctx, run.ID, details); err != nil {
			return err
		}
		applyTotals(run, details)
		return runs.UpdateRunTotals(ctx, run)
	})
	if err != nil {
		return nil, fmt.Errorf("payroll.Generate: %w", err)
	}
	uc.log.Info().Str("company_id", companyID).Str("run", run.RunNumber).Int("employees", run.EmployeeCount).Msg("nómina generada")
	res := dto.PayrollRunFromEntity(run, details)
	return &res, nil
}

func buildDetails(runID string, employees []entity.Profile, hours map[string]calc.Hours, rates calc.Rates, rules []entity.PayrollDeduction) []entity.PayrollDetail {
	details := make([]entity.PayrollDetail, 0, len(employees))
	for _, emp := range employees {
		h := hours[emp.ID]
		if !h.Total().IsPositive() {
			continue
		}
		pay := calc.Calculate(h, rates, rules)
		details = append(details, entity.PayrollDetail{
			ID:              uuid.NewString(),
			PayrollRunID:    runID,
			EmployeeID:      emp.ID,
			EmployeeName:    emp.FullName,
			RegularHours:    h.Regular.Round(2),
			OvertimeHours:   h.Overtime.Round(2),
			RegularPay:      pay.RegularPay,
			OvertimePay:     pay.OvertimePay,
			GrossPay:        pay.Gross,
			TotalDeductions: pay.Deductions,
			NetPay:          pay.Net,
		})
	}
	return details
}

func applyTotals(run *entity.PayrollRun, details []entity.PayrollDetail) {
	run.TotalGrossPay, run.TotalDeductions, run.TotalNetPay = decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range details {
		run.TotalGrossPay = run.TotalGrossPay.Add(d.GrossPay)
		run.TotalDeductions = run.TotalDeductions.Add(d.TotalDeductions)
		run.TotalNetPay = run.TotalNetPay.Add(d.NetPay)
	}
	run.EmployeeCount = len(details)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// Process marca la corrida como pagada. Solo corridas en borrador o aprobadas.
func (uc *UseCase) Process(ctx context.Context, companyID, runID, approverID string) (*dto.PayrollRunResponse, error) {
	run, err := uc.repo.GetRun(ctx, companyID, runID)
	if err != nil {
		return nil, fmt.Errorf("payroll.Process: %w", err)
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	if !calc.CanProcess(run.Status) {
		return nil, fmt.Errorf("corrida en estado %s: %w", run.Status, domain.ErrConflict)
	}
	at := now().UTC()
	if err := uc.repo.MarkPaid(ctx, companyID, runID, approverID, at); err != nil {
		return nil, fmt.Errorf("payroll.Process: %w", err)
	}
	run.Status = entity.PayrollStatusPaid
	if run.ApprovedBy == nil {
		run.ApprovedBy, run.ApprovedAt = &approverID, &at
	}
	res := dto.PayrollRunFromEntity(run, nil)
	return &res, nil
}

// ListRuns últimas corridas.
func (uc *UseCase) ListRuns(ctx context.Context, companyID string) ([]dto.PayrollRunResponse, error) {
	runs, err := uc.repo.ListRuns(ctx, companyID, runsLimit)
	if err != nil {
		return nil, fmt.Errorf("payroll.ListRuns: %w", err)
	}
	out := make([]dto.PayrollRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, dto.PayrollRunFromEntity(&runs[i], nil))
	}
	return out, nil
}

// GetRun corrida con sus detalles.
func (uc *UseCase) GetRun(ctx context.Context, companyID, runID string) (*dto.PayrollRunResponse, error) {
	run, err := uc.repo.GetRun(ctx, companyID, runID)
	if err != nil {
		return nil, fmt.Errorf("payroll.GetRun: %w", err)
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.repo.ListDetails(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("payroll.GetRun: %w", err)
	}
	res := dto.PayrollRunFromEntity(run, details)
	return &res, nil
}

// ListDeductions todas las reglas, activas e inactivas.
func (uc *UseCase) ListDeductions(ctx context.Context, companyID string) ([]dto.DeductionResponse, error) {
	rules, err := uc.repo.ListDeductions(ctx, companyID, false)
	if err != nil {
		return nil, fmt.Errorf("payroll.ListDeductions: %w", err)
	}
	out := make([]dto.DeductionResponse, 0, len(rules))
	for _, d := range rules {
		out = append(out, dto.DeductionFromEntity(d))
	}
	return out, nil
}

// CreateDeduction crea una regla activa. El monto no puede ser negativo y un porcentaje no puede superar 100.
func (uc *UseCase) CreateDeduction(ctx context.Context, companyID string, in dto.CreateDeductionRequest) (*dto.DeductionResponse, error) {
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: el monto no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.CalculationMethod == entity.CalcPercentage && in.Amount.GreaterThan(maxPercent) {
		return nil, fmt.Errorf("%w: el porcentaje no puede superar 100", domain.ErrInvalidInput)
	}
	d := &entity.PayrollDeduction{
		ID:                uuid.NewString(),
		CompanyID:         companyID,
		Name:              in.Name,
		DeductionType:     in.DeductionType,
		CalculationMethod: in.CalculationMethod,
		Amount:            in.Amount,
		IsPreTax:          in.IsPreTax,
		IsActive:          true,
		CreatedAt:         now().UTC(),
	}
	if err := uc.repo.CreateDeduction(ctx, d); err != nil {
		return nil, fmt.Errorf("payroll.CreateDeduction: %w", err)
	}
	res := dto.DeductionFromEntity(*d)
	return &res, nil
}

// SetDeductionActive activa o desactiva una regla.
func (uc *UseCase) SetDeductionActive(ctx context.Context, companyID, id string, active bool) error {
	if err := uc.repo.SetDeductionActive(ctx, companyID, id, active); err != nil {
		return fmt.Errorf("payroll.SetDeductionActive: %w", err)
	}
	return nil
}
