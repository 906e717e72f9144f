package database

import (
	"fmt"

	"cajachica/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openModificationIndex allows at most one in-flight Increase/Decrease/Closure
// request per opening request. Both postgres and sqlite accept partial indexes.
const openModificationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_fund_requests_open_modification
ON fund_requests (original_request_id)
WHERE request_type IN ('Incremento', 'Decremento', 'Cierre')
AND state NOT IN ('Aprobada', 'Rechazada Final')`

// Models lists every entity managed by Migrate, in dependency order
var Models = []interface{}{
	&model.Role{},
	&model.Area{},
	&model.User{},
	&model.FundRequest{},
	&model.ProjectedExpenseLine{},
	&model.StateHistoryEntry{},
	&model.CashFund{},
	&model.AuditLog{},
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string, logMode bool) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if logMode {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema, including indexes gorm tags cannot express
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(openModificationIndex).Error; err != nil {
		return fmt.Errorf("create open modification index: %w", err)
	}
	if log != nil {
		log.Info("database schema migrated", zap.Int("models", len(Models)))
	}
	return nil
}
