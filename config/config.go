package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrHelp возвращается, когда запрошена справка по флагам
var ErrHelp = pflag.ErrHelp

type Config struct {
	ImagesDir     string
	SDKPath       string
	NumProcessed  int
	Modification  string
	Workers       int
	ResultsDir    string
	HistogramBins int
	Seed          int64
	Parquet       bool
	Log           LogConfig
	Telegram      TelegramConfig
	S3            S3Config
}

type LogConfig struct {
	Level  string
	Format string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled уведомления включены, только если заданы токен и чат
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Prefix          string
	Region          string
}

// Enabled публикация отчётов включена, если задан endpoint и bucket
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// Load читает конфигурацию: флаги, затем переменные окружения, затем значения по умолчанию
func Load(args []string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("face-quality-scan", pflag.ContinueOnError)
	fs.String("images_dir", "", "directory with face images (required)")
	fs.String("sdk_path", "", "path to the face SDK installation (required)")
	fs.Int("num_processed", 0, "process a random sample of at most N images (0 = all)")
	fs.String("modification", "assessment", "quality mode: assessment or estimation")
	fs.Int("workers", 1, "number of parallel workers, each with its own engine")
	fs.String("results_dir", "results", "directory for result.csv and the histogram")
	fs.Int("histogram_bins", 10, "number of histogram bins")
	fs.Int64("seed", 0, "seed for sampling (0 = random)")
	fs.Bool("parquet", false, "also write result.parquet")
	fs.String("log_level", "info", "log level: debug, info, warn, error")
	fs.String("log_format", "text", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_chat_id", 0)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("s3_use_ssl", false)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "face-quality")
	v.SetDefault("s3_region", "us-east-1")

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.AutomaticEnv()

	cfg := &Config{
		ImagesDir:     v.GetString("images_dir"),
		SDKPath:       v.GetString("sdk_path"),
		NumProcessed:  v.GetInt("num_processed"),
		Modification:  v.GetString("modification"),
		Workers:       v.GetInt("workers"),
		ResultsDir:    v.GetString("results_dir"),
		HistogramBins: v.GetInt("histogram_bins"),
		Seed:          v.GetInt64("seed"),
		Parquet:       v.GetBool("parquet"),
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Telegram: TelegramConfig{
			Token:  v.GetString("telegram_token"),
			ChatID: v.GetInt64("telegram_chat_id"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("s3_endpoint"),
			AccessKeyID:     v.GetString("s3_access_key_id"),
			SecretAccessKey: v.GetString("s3_secret_access_key"),
			UseSSL:          v.GetBool("s3_use_ssl"),
			Bucket:          v.GetString("s3_bucket"),
			Prefix:          v.GetString("s3_prefix"),
			Region:          v.GetString("s3_region"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error
	if c.ImagesDir == "" {
		errs = append(errs, errors.New("images_dir is required"))
	}
	if c.SDKPath == "" {
		errs = append(errs, errors.New("sdk_path is required"))
	}
	if c.NumProcessed < 0 {
		errs = append(errs, errors.New("num_processed must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	if c.HistogramBins < 1 {
		errs = append(errs, errors.New("histogram_bins must be at least 1"))
	}
	return errors.Join(errs...)
}
