package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
)

func setup(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepositoryWithPool(mock, 5*time.Second, observability.NewNopLogger())
}

func sample(title string) model.Record {
	r := model.NewRecord(model.SourceKickstarter)
	r.Title = title
	r.AmountRaised = mo.Some(820.0)
	r.DaysLeft = mo.Some(12)
	return r
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestEnsureSchema(t *testing.T) {
	mock, repo := setup(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projects").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertManyCommits(t *testing.T) {
	mock, repo := setup(t)

	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO projects").
			WithArgs(anyArgs(10)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err := repo.InsertMany(context.Background(), []model.Record{sample("a"), sample("b")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertManyRollsBackOnError(t *testing.T) {
	mock, repo := setup(t)
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO projects").WithArgs(anyArgs(10)...).WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.InsertMany(context.Background(), []model.Record{sample("a")})
	assert.True(t, errors.Is(err, boom))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertManyEmptyIsNoop(t *testing.T) {
	mock, repo := setup(t)

	require.NoError(t, repo.InsertMany(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumAmountRaised(t *testing.T) {
	mock, repo := setup(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_raised\), 0\) FROM projects WHERE daysleft >= \$1`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(1820.0))

	sum, err := repo.SumAmountRaised(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1820.0, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAndClear(t *testing.T) {
	mock, repo := setup(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectExec("DELETE FROM projects").WillReturnResult(pgxmock.NewResult("DELETE", 5))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	removed, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
