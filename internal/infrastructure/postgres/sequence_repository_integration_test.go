//go:build integration

package postgres_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/intelliservice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/intelliservice-api/pkg/config"
)

const testCompany = "00000000-0000-0000-0000-0000000000aa"

const schema = `
CREATE TABLE invoices (company_id UUID NOT NULL, invoice_number TEXT NOT NULL, UNIQUE (company_id, invoice_number));
CREATE TABLE payroll_runs (company_id UUID NOT NULL, run_number TEXT NOT NULL);
CREATE TABLE document_sequences (
    company_id UUID NOT NULL,
    sequence_key TEXT NOT NULL,
    last_value BIGINT NOT NULL,
    PRIMARY KEY (company_id, sequence_key)
);`

func newSequenceRepo(t *testing.T) (*postgres.SequenceRepo, func(sql string, args ...any)) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("intelliservice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	exec := func(sql string, args ...any) {
		_, err := pool.Exec(ctx, sql, args...)
		require.NoError(t, err)
	}
	return postgres.NewSequenceRepository(pool), exec
}

func TestSequenceRepo_ContinuaDesdeMaximoExistente(t *testing.T) {
	repo, exec := newSequenceRepo(t)
	exec(`INSERT INTO invoices VALUES ($1, 'INV-2401-0042'), ($1, 'INV-2401-0007'), ($1, 'INV-2312-0099')`, testCompany)

	n, err := repo.Next(context.Background(), testCompany, "INV-2401")
	require.NoError(t, err)
	assert.Equal(t, int64(43), n)

	n, err = repo.Next(context.Background(), testCompany, "INV-2401")
	require.NoError(t, err)
	assert.Equal(t, int64(44), n)
}

func TestSequenceRepo_ConcurrenciaSinDuplicados(t *testing.T) {
	repo, _ := newSequenceRepo(t)

	const workers = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.Next(context.Background(), testCompany, "PR-2024")
			assert.NoError(t, err)
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Len(t, got, workers)
	for i, n := range got {
		assert.Equal(t, int64(i+1), n)
	}
}
