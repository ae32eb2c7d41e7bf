package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gridlink/internal/constants"
	"gridlink/internal/utils"
)

type InfluxConfig struct {
	URL    string
	Org    string
	Bucket string
	Token  string
}

type BlockchainConfig struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type RedisConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type Config struct {
	Port           string
	SessionPin     string
	SessionTTL     time.Duration
	LogLevel       string
	AllowedOrigins []string
	ExportWorkers  int

	Influx     InfluxConfig
	Blockchain BlockchainConfig
	S3         S3Config
	Redis      RedisConfig
}

// Load reads configuration from the environment. Local overrides in
// .env.local take precedence over .env; both files are optional.
func Load() *Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	origins := []string{"http://localhost:5173"}
	if raw := utils.GetEnv("CONNECTOR_ALLOWED_ORIGINS", ""); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		Port:           utils.GetEnv("CONNECTOR_PORT", constants.DefaultPort),
		SessionPin:     utils.GetEnv("SESSION_PIN", ""),
		SessionTTL:     utils.GetEnvSeconds("SESSION_TTL_SECONDS", constants.DefaultSessionTTL),
		LogLevel:       utils.GetEnv("LOG_LEVEL", "info"),
		AllowedOrigins: origins,
		ExportWorkers:  utils.GetEnvInt("EXPORT_WORKERS", constants.DefaultExportWorkers),

		Influx: InfluxConfig{
			URL:    utils.GetEnv("INFLUX_URL", ""),
			Org:    utils.GetEnv("INFLUX_ORG", ""),
			Bucket: utils.GetEnv("INFLUX_BUCKET", ""),
			Token:  utils.GetEnv("INFLUX_TOKEN", ""),
		},
		Blockchain: BlockchainConfig{
			RPCURL:          utils.GetEnv("POLYGON_RPC_URL", ""),
			PrivateKey:      utils.GetEnv("ANCHOR_PRIVATE_KEY", ""),
			ContractAddress: utils.GetEnv("ANCHOR_CONTRACT_ADDRESS", ""),
		},
		S3: S3Config{
			Region:          utils.GetEnv("AWS_REGION", ""),
			Bucket:          utils.GetEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     utils.GetEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: utils.GetEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Redis: RedisConfig{
			Host:     utils.GetEnv("REDIS_HOST", ""),
			Port:     utils.GetEnv("REDIS_PORT", "6379"),
			Username: utils.GetEnv("REDIS_USERNAME", ""),
			Password: utils.GetEnv("REDIS_PASSWORD", ""),
		},
	}
}
