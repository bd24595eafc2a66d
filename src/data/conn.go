package data

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the backing store. MYSQL_DSN selects MySQL; otherwise a
// local SQLite file is used (CHARBOT_DB, default "charbot.db").
func Connect() (*gorm.DB, error) {
	if dsn := os.Getenv("MYSQL_DSN"); strings.TrimSpace(dsn) != "" {
		return ConnectMySQL(dsn)
	}

	path := os.Getenv("CHARBOT_DB")
	if path == "" {
		path = "charbot.db"
	}
	return ConnectSQLite(path)
}

// MustConnect is Connect or fatal.
func MustConnect() *gorm.DB {
	db, err := Connect()
	if err != nil {
		log.Fatalf("data: connect: %v", err)
	}
	return db
}

// ConnectMySQL opens a gorm DB with sane defaults.
func ConnectMySQL(dsn string) (*gorm.DB, error) {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
		dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
	}

	return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger()})
}

// ConnectSQLite opens a gorm DB over a SQLite file in WAL mode.
func ConnectSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}

	return db, nil
}

func gormLogger() logger.Interface {
	return logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{SlowThreshold: time.Second, LogLevel: logger.Warn, IgnoreRecordNotFoundError: true, Colorful: false},
	)
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}
