// Package postgres implements the persistence contracts on PostgreSQL
// via gorm. Each repository owns one table; schema migration runs at
// construction time.
package postgres

import (
	"encoding/json"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/regtrace/regtrace/pkg/config"
	"github.com/regtrace/regtrace/pkg/errors"
)

// Connect opens the database connection from configuration
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.NewFromCode(errors.ErrDatabaseError).WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.NewFromCode(errors.ErrDatabaseError).WithCause(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	return db, nil
}

func dbError(err error) error {
	return errors.NewFromCode(errors.ErrDatabaseError).WithCause(err)
}

// marshalJSON encodes a value for a jsonb column; nil slices become
// empty arrays so scans round-trip.
func marshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalJSON(data string, v interface{}) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), v)
}
