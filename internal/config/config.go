package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"facility-recon/internal/reconcile/model"
	"facility-recon/internal/utils"
)

type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Profile   string
	PathStyle bool
}

func (s S3Config) Enabled() bool { return s.Bucket != "" }

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	Threshold float64
	Scorer    string
	HistoryDB string // пусто, значит история выключена
	S3        S3Config
}

// New: viper с дефолтами и переменными окружения (HOST, PORT, LOG_LEVEL...).
// .env и .env.local подхватываются, если лежат рядом.
func New() *viper.Viper {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("log_file", "logs/facility-recon.log")
	v.SetDefault("threshold", model.DefaultThreshold)
	v.SetDefault("scorer", "ratio")
	v.SetDefault("history_db", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "reports")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_profile", "")
	v.SetDefault("s3_path_style", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile подмешивает yaml/toml/json конфиг; отсутствие файла не ошибка.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("facility-recon")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) && path == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Host:         v.GetString("host"),
		Port:         v.GetInt("port"),
		AllowOrigins: splitList(v.GetString("allow_origins")),
		LogLevel:     v.GetString("log_level"),
		MaxUploadMB:  v.GetInt("max_upload_mb"),
		LogFile:      v.GetString("log_file"),
		Scorer:       v.GetString("scorer"),
		HistoryDB:    v.GetString("history_db"),
		S3: S3Config{
			Bucket:    v.GetString("s3_bucket"),
			Prefix:    strings.Trim(v.GetString("s3_prefix"), "/"),
			Region:    v.GetString("s3_region"),
			Profile:   v.GetString("s3_profile"),
			PathStyle: v.GetBool("s3_path_style"),
		},
	}
	// GetFloat64 молча превращает мусор в 0, а 0 принимает любое совпадение
	raw := v.GetString("threshold")
	th, ok := utils.ParseNumber(raw)
	if !ok || th < 0 || th > 100 {
		return Config{}, fmt.Errorf("threshold %q: %w", raw, model.ErrInvalidThreshold)
	}
	cfg.Threshold = th
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 64
	}
	return cfg, nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
