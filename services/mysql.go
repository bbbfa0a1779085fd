package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aqar-chatbot/config"
)

var propertyDB *gorm.DB

// GetPropertyDB returns the property database handle
func GetPropertyDB() *gorm.DB {
	return propertyDB
}

// SetPropertyDB overrides the handle, used by tests
func SetPropertyDB(db *gorm.DB) {
	propertyDB = db
}

// InitMySQL opens the property inventory database
func InitMySQL(cfg *config.Config) error {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("Connected to MySQL", "host", cfg.DBHost, "database", cfg.DBName)
	propertyDB = db
	return nil
}

// TestDBConnection pings MySQL and returns the unit_search_sorting row count
func TestDBConnection(ctx context.Context) (int64, error) {
	if propertyDB == nil {
		return 0, fmt.Errorf("property database not initialized")
	}

	sqlDB, err := propertyDB.DB()
	if err != nil {
		return 0, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("MySQL ping failed: %w", err)
	}

	var count int64
	if err := propertyDB.WithContext(ctx).Table("unit_search_sorting").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return count, nil
}

// ExecuteQuery runs a raw SELECT and returns rows as maps keyed by column
// name. Values come back as strings or nil, matching what the formatting
// layer expects.
func ExecuteQuery(ctx context.Context, query string) ([]map[string]interface{}, error) {
	if propertyDB == nil {
		return nil, fmt.Errorf("property database not initialized")
	}

	rows, err := propertyDB.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]sql.RawBytes, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if values[i] == nil {
				row[col] = nil
			} else {
				row[col] = string(values[i])
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slog.Debug("Executed property query", "rows", len(results))
	return results, nil
}
