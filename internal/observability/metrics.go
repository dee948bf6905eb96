package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pantry_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ImageUploads counts image uploads by owner kind and outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pantry_image_uploads_total",
		Help: "Total number of image uploads by kind and result",
	}, []string{"kind", "result"})

	// RecipeWrites counts recipe create and update operations.
	RecipeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pantry_recipe_writes_total",
		Help: "Total number of recipe writes by operation",
	}, []string{"operation"})
)

const queryStartKey = "observability:query_start"

// RegisterQueryMetrics installs GORM callbacks that observe every statement in
// DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		name     string
		register func(name string, before, after func(*gorm.DB)) error
	}{
		{"create", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("metrics:before_"+n, b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("metrics:after_"+n, a)
		}},
		{"query", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("metrics:before_"+n, b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("metrics:after_"+n, a)
		}},
		{"update", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("metrics:before_"+n, b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("metrics:after_"+n, a)
		}},
		{"delete", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("metrics:before_"+n, b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("metrics:after_"+n, a)
		}},
	}
	for _, s := range steps {
		if err := s.register(s.name, before, after(s.name)); err != nil {
			return err
		}
	}
	return nil
}
