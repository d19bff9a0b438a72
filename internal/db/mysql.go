package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"devconnector/internal/model"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewMySQL returns a connected GORM DB instance logging through logger.
func NewMySQL(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := Open(mysql.Open(dsn), logger)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Open returns a GORM DB over dialector with the service's settings.
// Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
// No foreign key is declared from profiles to users: users belong to the auth
// service and may live elsewhere.
func Open(dialector gorm.Dialector, logger *logrus.Logger) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

// Migrate creates or updates the users and profiles tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Profile{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
