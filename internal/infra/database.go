package infra

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Schema is managed
// exclusively via the embedded SQL migrations (see RunMigrations); AutoMigrate
// is never used so CHECK constraints, the partial unique index on partial
// accounts and the code sequence stay under precise control.
//
// TranslateError maps unique and foreign-key violations to gorm.ErrDuplicatedKey
// and gorm.ErrForeignKeyViolated, which the repositories turn into conflict and
// validation errors.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}
