package storage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
)

const (
	MethodInProcess = "application"
	MethodNative    = "database"
)

// AggregateResult - сумма и время, за которое она посчитана
type AggregateResult struct {
	Method  string
	Sum     float64
	Elapsed time.Duration
}

// Aggregator считает "сколько собрано кампаниями, у которых осталось >= N дней"
// двумя способами: полным сканом в приложении и агрегацией в БД
type Aggregator struct {
	repo   Repository
	logger *observability.Logger
}

func NewAggregator(repo Repository, logger *observability.Logger) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// Compare считает сумму обоими способами и предупреждает, если они разошлись
func (a *Aggregator) Compare(ctx context.Context, minDaysLeft int) (inProcess, native AggregateResult, err error) {
	inProcess, err = a.InProcess(ctx, minDaysLeft)
	if err != nil {
		return inProcess, native, err
	}
	native, err = a.Native(ctx, minDaysLeft)
	if err != nil {
		return inProcess, native, err
	}

	if !inProcess.Agrees(native) {
		a.logger.Warn("Aggregates disagree",
			"in_process", inProcess.Sum,
			"native", native.Sum,
			"min_days_left", minDaysLeft,
		)
	}
	return inProcess, native, nil
}

// Agrees: порядок сложения в БД и в приложении разный, поэтому сравнение с допуском
func (r AggregateResult) Agrees(other AggregateResult) bool {
	return math.Abs(r.Sum-other.Sum) <= 1e-6
}

// InProcess читает все документы и суммирует в памяти
func (a *Aggregator) InProcess(ctx context.Context, minDaysLeft int) (AggregateResult, error) {
	start := time.Now()
	records, err := a.repo.FindAll(ctx)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("in-process aggregate: %w", err)
	}
	return AggregateResult{
		Method:  MethodInProcess,
		Sum:     SumRaised(records, minDaysLeft),
		Elapsed: time.Since(start),
	}, nil
}

// Native отдаёт фильтр и сумму базе
func (a *Aggregator) Native(ctx context.Context, minDaysLeft int) (AggregateResult, error) {
	start := time.Now()
	sum, err := a.repo.SumAmountRaised(ctx, minDaysLeft)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("native aggregate: %w", err)
	}
	return AggregateResult{
		Method:  MethodNative,
		Sum:     sum,
		Elapsed: time.Since(start),
	}, nil
}

// SumRaised - та же семантика, что у SQL: записи без daysleft не проходят фильтр,
// записи без суммы дают 0
func SumRaised(records []model.Record, minDaysLeft int) float64 {
	eligible := lo.Filter(records, func(r model.Record, _ int) bool {
		return r.CountsTowardRaised(minDaysLeft)
	})
	return lo.Reduce(eligible, func(sum float64, r model.Record, _ int) float64 {
		return sum + r.AmountRaised.OrEmpty()
	}, 0)
}
