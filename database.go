package main

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqliteDSN turns a bare path into a modernc DSN with foreign keys enforced.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		path = "file:" + path
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func openSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite", "sqlite3", "":
		driver, dsn = "sqlite", sqliteDSN(dsn)
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openDB(driver, dsn string) (*gorm.DB, error) {
	sqlDB, err := openSQL(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	var dialector gorm.Dialector
	if driver == "postgres" {
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	} else {
		dialector = sqlite.Dialector{Conn: sqlDB}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("opening gorm: %w", err)
	}

	return db, nil
}

func initDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Post{}, &Comment{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
