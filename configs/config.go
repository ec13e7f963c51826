package configs

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDriver  string
	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	UploadDir string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:      getenv("PORT", "3750"),
		DBDriver:  getenv("DB_DRIVER", "mysql"),
		DBHost:    getenv("DB_HOST", "localhost"),
		DBPort:    getenv("DB_PORT", "3306"),
		DBName:    os.Getenv("DB_NAME"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		UploadDir: getenv("UPLOAD_DIR", "img/capas-livro"),
	}
}

// DSN builds the driver-specific data source name. For sqlite3 the DB_NAME
// is interpreted as the database file path.
func (c Config) DSN() string {
	switch c.DBDriver {
	case "sqlite3":
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", c.DBName)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
