package initializers

import (
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the Supabase Postgres database behind DIRECT_URL.
func ConnectDB(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	logger.Info("connecting to database")
	if dsn == "" {
		return nil, fmt.Errorf("env variable DIRECT_URL is empty")
	}

	pgConfig := postgres.Config{
		PreferSimpleProtocol: true, // the Supabase pooler rejects prepared statements
		DriverName:           "postgres",
		DSN:                  dsn,
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		PrepareStmt:          false,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	logger.Info("database connection successful")
	return db, nil
}
