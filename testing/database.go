// Package testing provides throwaway Postgres databases and fixtures for integration tests
package testing

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/amirphl/pesquisa-campo/migrations"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDBConfig holds configuration for test database connections
type TestDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

// GetTestDBConfig loads test database configuration from environment variables
func GetTestDBConfig() *TestDBConfig {
	return &TestDBConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  getEnv("TEST_DB_SSL_MODE", "disable"),
	}
}

func (c *TestDBConfig) dsn(dbName string) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.SSLMode)
	if dbName != "" {
		dsn += " dbname=" + dbName
	}
	return dsn
}

// TestDB represents a test database instance
type TestDB struct {
	DB     *gorm.DB
	Name   string
	config *TestDBConfig
}

// ErrDatabaseUnavailable is returned by SetupTestDB when no Postgres server answers
type ErrDatabaseUnavailable struct {
	Err error
}

func (e *ErrDatabaseUnavailable) Error() string {
	return fmt.Sprintf("test database unavailable: %v", e.Err)
}

func (e *ErrDatabaseUnavailable) Unwrap() error {
	return e.Err
}

// SetupTestDB creates a uniquely named database and migrates it to the latest schema
func SetupTestDB() (*TestDB, error) {
	config := GetTestDBConfig()

	adminDB, err := sql.Open("postgres", config.dsn(""))
	if err != nil {
		return nil, &ErrDatabaseUnavailable{Err: err}
	}
	defer adminDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := adminDB.PingContext(ctx); err != nil {
		return nil, &ErrDatabaseUnavailable{Err: err}
	}

	dbName := fmt.Sprintf("pesquisa_test_%d_%d", time.Now().Unix(), rand.Intn(10000))
	if _, err := adminDB.Exec("CREATE DATABASE " + dbName); err != nil {
		return nil, fmt.Errorf("failed to create test database %s: %w", dbName, err)
	}

	tdb := &TestDB{Name: dbName, config: config}

	sqlDB, err := migrations.Open(config.dsn(dbName))
	if err != nil {
		_ = tdb.drop()
		return nil, fmt.Errorf("failed to migrate test database %s: %w", dbName, err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		_ = tdb.drop()
		return nil, fmt.Errorf("failed to connect to test database %s: %w", dbName, err)
	}

	tdb.DB = gdb
	return tdb, nil
}

// TeardownTestDB closes connections and drops the database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB != nil {
		if sqlDB, err := tdb.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return tdb.drop()
}

func (tdb *TestDB) drop() error {
	adminDB, err := sql.Open("postgres", tdb.config.dsn(""))
	if err != nil {
		return err
	}
	defer adminDB.Close()

	if _, err := adminDB.Exec(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()",
		tdb.Name,
	); err != nil {
		log.WithError(err).Warnf("failed to terminate connections to test database %s", tdb.Name)
	}

	if _, err := adminDB.Exec("DROP DATABASE IF EXISTS " + tdb.Name); err != nil {
		log.WithError(err).Warnf("failed to drop test database %s", tdb.Name)
		return err
	}
	return nil
}

// ClearAllTables removes all rows while preserving the schema
func (tdb *TestDB) ClearAllTables() error {
	// children first
	tables := []string{
		"registro_auditoria",
		"pesquisador_localizacao",
		"respostas",
		"respostas_pesquisas",
		"campanhas_pesquisadores",
		"campanhas_empresas",
		"opcoes_perguntas",
		"perguntas",
		"campanhas",
		"vouchers",
		"pesquisadores",
		"empresas",
		"administradores",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// TestWithDB sets up a database, runs testFunc and drops the database afterwards
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.WithError(cleanupErr).Warn("failed to clean up test database")
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
