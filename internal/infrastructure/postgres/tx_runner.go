package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/intelliservice-api/internal/application/billing"
	"github.com/jhoicas/intelliservice-api/internal/application/payroll"
	"github.com/jhoicas/intelliservice-api/internal/domain/repository"
)

var (
	_ billing.TxRunner = (*TxRunner)(nil)
	_ payroll.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx abre la transacción, ejecuta fn y hace Commit; cualquier error deja Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBilling factura, líneas y auditoría AHS en la misma transacción. El consecutivo queda
// fuera: se asigna antes con su propio commit.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoices repository.InvoiceRepository,
	ahs repository.AHSRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewInvoiceRepository(tx), NewAHSRepository(tx))
	})
}

// RunPayroll corrida y detalles en la misma transacción.
func (r *TxRunner) RunPayroll(ctx context.Context, fn func(runs repository.PayrollRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewPayrollRepository(tx))
	})
}
