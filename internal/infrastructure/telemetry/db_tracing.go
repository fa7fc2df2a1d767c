package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBTracingConfig controls gorm span creation
type DBTracingConfig struct {
	Enabled bool
	DBName  string
	// LogFullSQL keeps bound query variables in span attributes
	LogFullSQL bool
}

// InstrumentDB registers the otelgorm plugin so every statement becomes a
// child span of the request span
func InstrumentDB(db *gorm.DB, cfg DBTracingConfig) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
