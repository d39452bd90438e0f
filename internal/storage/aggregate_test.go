package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
)

var fixedTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubRepository struct {
	Repository
	records []model.Record
	sum     float64
	err     error
}

func (s *stubRepository) FindAll(context.Context) ([]model.Record, error) {
	return s.records, s.err
}

func (s *stubRepository) SumAmountRaised(context.Context, int) (float64, error) {
	return s.sum, s.err
}

func withDays(amount float64, days int) model.Record {
	r := model.NewRecord(model.SourceCrowdcube)
	r.AmountRaised = mo.Some(amount)
	r.DaysLeft = mo.Some(days)
	return r
}

func TestSumRaised(t *testing.T) {
	noDays := model.NewRecord(model.SourceCrowdcube)
	noDays.AmountRaised = mo.Some(1e6)

	records := []model.Record{withDays(100, 10), withDays(50, 11), withDays(999, 9), noDays}

	assert.Equal(t, 150.0, SumRaised(records, 10))
	assert.Equal(t, 1149.0, SumRaised(records, 0))
	assert.Zero(t, SumRaised(nil, 10))
}

func TestAggregatorInProcess(t *testing.T) {
	agg := NewAggregator(&stubRepository{records: []model.Record{withDays(10, 20), withDays(5, 1)}}, observability.NewNopLogger())

	res, err := agg.InProcess(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Sum)
	assert.Equal(t, MethodInProcess, res.Method)
}

func TestAggregatorPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	agg := NewAggregator(&stubRepository{err: boom}, observability.NewNopLogger())

	_, err := agg.InProcess(context.Background(), 10)
	assert.True(t, errors.Is(err, boom))
}

func TestAggregatorCompare(t *testing.T) {
	repo := &stubRepository{records: []model.Record{withDays(0.1, 20), withDays(0.2, 30)}, sum: 0.3}
	agg := NewAggregator(repo, observability.NewNopLogger())

	inProcess, native, err := agg.Compare(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, MethodInProcess, inProcess.Method)
	assert.Equal(t, MethodNative, native.Method)
	// 0.1+0.2 != 0.3 в float64, но это не расхождение
	assert.True(t, inProcess.Agrees(native))

	repo.sum = 42
	inProcess, native, err = agg.Compare(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, inProcess.Agrees(native))
}

func TestNewDocuments(t *testing.T) {
	docs, err := NewDocuments([]model.Record{withDays(1, 1), withDays(1, 1)}, fixedTime)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.NotEqual(t, docs[0].ID, docs[1].ID)
	assert.Equal(t, docs[0].Checksum, docs[1].Checksum)
	assert.Len(t, docs[0].Args(), 10)

	_, err = NewDocuments([]model.Record{model.NewRecord("")}, fixedTime)
	assert.Error(t, err)
}
