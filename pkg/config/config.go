package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Academics AcademicsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AcademicsConfig holds school-wide tunables injected into the domain services.
type AcademicsConfig struct {
	MaxStudentsPerCourse int
	AttendanceThreshold  float64
	AcademicYear         int
	GradeScale           GradeScale
}

// GradeScale maps letter grades to their minimum percentage.
type GradeScale struct {
	A float64
	B float64
	C float64
	D float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	academicYear := v.GetInt("ACADEMIC_YEAR")
	if academicYear <= 0 {
		academicYear = time.Now().UTC().Year()
	}
	cfg.Academics = AcademicsConfig{
		MaxStudentsPerCourse: v.GetInt("MAX_STUDENTS_PER_COURSE"),
		AttendanceThreshold:  v.GetFloat64("ATTENDANCE_THRESHOLD"),
		AcademicYear:         academicYear,
		GradeScale: GradeScale{
			A: v.GetFloat64("GRADE_SCALE_A"),
			B: v.GetFloat64("GRADE_SCALE_B"),
			C: v.GetFloat64("GRADE_SCALE_C"),
			D: v.GetFloat64("GRADE_SCALE_D"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_mgmt")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAX_STUDENTS_PER_COURSE", 30)
	v.SetDefault("ATTENDANCE_THRESHOLD", 75.0)
	v.SetDefault("ACADEMIC_YEAR", 0)
	v.SetDefault("GRADE_SCALE_A", 90.0)
	v.SetDefault("GRADE_SCALE_B", 80.0)
	v.SetDefault("GRADE_SCALE_C", 70.0)
	v.SetDefault("GRADE_SCALE_D", 60.0)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
