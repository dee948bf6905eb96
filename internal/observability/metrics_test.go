package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sample struct {
	ID   uint
	Name string
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&sample{}))

	require.NoError(t, RegisterQueryMetrics(db))

	before := testutil.CollectAndCount(DatabaseQueryLatency)
	require.NoError(t, db.Create(&sample{Name: "a"}).Error)
	var rows []sample
	require.NoError(t, db.Find(&rows).Error)

	assert.Len(t, rows, 1)
	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "pantry-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, finish := StartSpan(context.Background(), "test.span", attribute.String("k", "v"))
	assert.NotNil(t, ctx)
	finish(nil)
}
