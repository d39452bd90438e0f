package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
	"crowdfund-scraper/internal/storage/sqlite"
)

func campaign(amount float64, days int) model.Record {
	r := model.NewRecord(model.SourceCrowdcube)
	r.AmountRaised = mo.Some(amount)
	r.DaysLeft = mo.Some(days)
	return r
}

func TestAggregateWorksWithoutSelectorsFile(t *testing.T) {
	cfg := config.Default()
	cfg.SelectorsFile = filepath.Join(t.TempDir(), "missing.yaml")

	repo, err := sqlite.NewRepository(":memory:", 5*time.Second, observability.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, repo.InsertMany(context.Background(), []model.Record{campaign(100, 20), campaign(200, 5)}))

	env.cfg, env.logger, env.repo = cfg, observability.NewNopLogger(), repo
	t.Cleanup(func() {
		_ = repo.Close()
		env.cfg, env.logger, env.repo = nil, nil, nil
	})

	var out bytes.Buffer
	aggregateCmd.SetOut(&out)
	aggregateCmd.SetContext(context.Background())
	t.Cleanup(func() { aggregateCmd.SetOut(nil) })

	require.NoError(t, aggregateCmd.RunE(aggregateCmd, nil))

	assert.Contains(t, out.String(), "GBP 100.00")
	assert.Contains(t, out.String(), storage.MethodNative)
	assert.Contains(t, out.String(), storage.MethodInProcess)
}
