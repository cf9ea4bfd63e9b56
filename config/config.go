package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`
	DBHost  string `json:"dbhost"`
	DBPort  uint16 `json:"dbport"`
	DBName  string `json:"dbname"`
	DBUser  string `json:"dbuser"`
	DBPass  string `json:"dbpass"`
	// CashMethod is the payment-method name treated as cash-equivalent when
	// recording patient payments; payments through any other method require a
	// card payment type.
	CashMethod string `json:"cashmethod"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// Load environment variables from .env file; a missing file is fine
		// when the environment is already populated (tests, containers).
		if err := godotenv.Load(); err != nil && os.Getenv("APPENV") == "" {
			log.Printf("No .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		cashMethod := os.Getenv("CASHMETHOD")
		if cashMethod == "" {
			cashMethod = "cash"
		}

		config = &Config{
			AppName:    os.Getenv("APPNAME"),
			AppEnv:     os.Getenv("APPENV"),
			AppPort:    uint16(appPort),
			GinMode:    os.Getenv("GINMODE"),
			DBHost:     os.Getenv("DBHOST"),
			DBPort:     uint16(dbPort),
			DBName:     os.Getenv("DBNAME"),
			DBUser:     os.Getenv("DBUSER"),
			DBPass:     os.Getenv("DBPASS"),
			CashMethod: cashMethod,
		}
	})
	return config
}

// ResetConfigForTest clears the singleton so tests can reload with fresh env values.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// ConnectDatabase establishes the gorm connection. Production uses MySQL from
// the configured DSN; the test environment uses a shared in-memory SQLite
// database so tests never need a running server.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()

	if cfg.AppEnv == "test" {
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
