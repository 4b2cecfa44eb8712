package env

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const prefix = "APP"

type Cfg struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	FioToken         string        `envconfig:"FIO_TOKEN" required:"true"`
	FioBaseURL       string        `envconfig:"FIO_BASE_URL" default:"https://fioapi.fio.cz/v1/rest/"`
	FioDecimal       bool          `envconfig:"FIO_DECIMAL" default:"true"`
	FioAttempts      uint          `envconfig:"FIO_ATTEMPTS" default:"3"`
	FioRetryDelay    time.Duration `envconfig:"FIO_RETRY_DELAY" default:"1s"`
	FioRetryMaxDelay time.Duration `envconfig:"FIO_RETRY_MAX_DELAY" default:"2m"`
	FioTimeout       time.Duration `envconfig:"FIO_TIMEOUT" default:"30s"`

	CursorKey    string        `envconfig:"CURSOR_KEY" default:"default"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5m"`

	DBUser string `envconfig:"DB_USER"`
	DBPass string `envconfig:"DB_PASSWORD"`
	DBHost string `envconfig:"DB_HOST" default:"localhost"`
	DBName string `envconfig:"DB_NAME"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`

	MQUser string `envconfig:"MQ_USER" default:"guest"`
	MQPass string `envconfig:"MQ_PASSWORD" default:"guest"`
	MQHost string `envconfig:"MQ_HOST" default:"localhost"`
	MQPort int    `envconfig:"MQ_PORT" default:"5672"`

	MQMaxReconnect   int           `envconfig:"MQ_MAX_RECONNECT" default:"5"`
	MQReconnectDelay time.Duration `envconfig:"MQ_RECONNECT_DELAY" default:"1s"`

	RedisHost string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`
	RedisPort int    `envconfig:"REDIS_PORT" default:"6379"`

	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// GetEnvCfg reads APP_ prefixed variables, after loading a .env file from
// the working directory when there is one.
func GetEnvCfg() (Cfg, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}

	var cfg Cfg
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Cfg{}, errors.Wrap(err, "parse environment variables")
	}

	if cfg.PollInterval < 30*time.Second {
		log.Warnf("poll interval %v is below the 30s token limit, using 30s", cfg.PollInterval)
		cfg.PollInterval = 30 * time.Second
	}

	return cfg, nil
}
