// Package stores opens the database shared by the history and memory stores.
package stores

import (
	"fmt"
	"net"
	"time"

	"github.com/ethanbaker/legal-assistant/pkg/utils"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN builds a MySQL DSN from the MYSQL_* configuration keys
func MySQLDSN(cfg *utils.Config) string {
	dbConfig := mysql.NewConfig()
	dbConfig.User = cfg.Get("MYSQL_USER")
	dbConfig.Passwd = cfg.Get("MYSQL_ROOT_PASSWORD")
	dbConfig.Net = "tcp"
	dbConfig.Addr = net.JoinHostPort(cfg.GetWithDefault("MYSQL_HOST", "127.0.0.1"), cfg.GetWithDefault("MYSQL_PORT", "3306"))
	dbConfig.DBName = cfg.Get("MYSQL_DATABASE")
	dbConfig.ParseTime = true
	dbConfig.Loc = time.UTC

	return dbConfig.FormatDSN()
}

// OpenMySQL opens a gorm connection for the given DSN
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
