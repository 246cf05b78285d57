package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"rankwatch/models"
)

type Config struct {
	ChatWork  ChatWorkConfig
	Monitor   MonitorConfig
	Scraper   ScraperConfig
	Debug     DebugConfig
	Files     FilesConfig
	Location  *time.Location
	ProxyURL  string
	StatsCron string
	LogLevel  string
	LogJSON   bool
	LogFile   string
	Targets   []models.WatchTarget
}

type ChatWorkConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

type MonitorConfig struct {
	CheckInterval     time.Duration
	IdleInterval      time.Duration
	ErrorCooldown     time.Duration
	TargetDelay       time.Duration
	SleepStart        int
	SleepEnd          int
	ActivityThreshold int
}

type ScraperConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	PageTimeout time.Duration
	SettleDelay time.Duration
	MinListings int
	MaxListings int
	Headless    bool
	UserAgent   string
}

type DebugConfig struct {
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

type FilesConfig struct {
	Snapshot string
	Stats    string
	DBPath   string
	Targets  string
}

type targetsFile struct {
	Targets []models.WatchTarget `yaml:"targets"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ChatWork: ChatWorkConfig{
			Token:   os.Getenv("CHATWORK_TOKEN"),
			BaseURL: getEnv("CHATWORK_BASE_URL", DefaultChatWorkBaseURL),
			Timeout: getEnvDuration("NOTIFY_TIMEOUT", DefaultNotifyTimeout),
		},
		Monitor: MonitorConfig{
			CheckInterval:     getEnvDuration("CHECK_INTERVAL", DefaultCheckInterval),
			IdleInterval:      getEnvDuration("IDLE_INTERVAL", DefaultIdleInterval),
			ErrorCooldown:     getEnvDuration("ERROR_COOLDOWN", DefaultErrorCooldown),
			TargetDelay:       getEnvDuration("TARGET_DELAY", DefaultTargetDelay),
			SleepStart:        getEnvInt("SLEEP_START", DefaultSleepStart),
			SleepEnd:          getEnvInt("SLEEP_END", DefaultSleepEnd),
			ActivityThreshold: getEnvInt("ACTIVITY_THRESHOLD", DefaultActivityThreshold),
		},
		Scraper: ScraperConfig{
			MaxRetries:  getEnvInt("MAX_RETRIES", DefaultMaxRetries),
			RetryDelay:  getEnvDuration("RETRY_DELAY", DefaultRetryDelay),
			PageTimeout: getEnvDuration("PAGE_TIMEOUT", DefaultPageTimeout),
			SettleDelay: getEnvDuration("SETTLE_DELAY", DefaultSettleDelay),
			MinListings: getEnvInt("MIN_LISTINGS", DefaultMinListings),
			MaxListings: getEnvInt("MAX_LISTINGS", DefaultMaxListings),
			Headless:    getEnv("HEADLESS", "true") == "true",
			UserAgent:   getEnv("USER_AGENT", DefaultUserAgent),
		},
		Debug: DebugConfig{
			Dir:         getEnv("DEBUG_DIR", "debug"),
			S3Bucket:    os.Getenv("DEBUG_S3_BUCKET"),
			S3Region:    getEnv("DEBUG_S3_REGION", "ap-northeast-1"),
			S3Endpoint:  os.Getenv("DEBUG_S3_ENDPOINT"),
			S3AccessKey: os.Getenv("DEBUG_S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("DEBUG_S3_SECRET_KEY"),
		},
		Files: FilesConfig{
			Snapshot: getEnv("SNAPSHOT_FILE", "2st_snapshot.json"),
			Stats:    getEnv("STATS_FILE", "2st_stats.json"),
			DBPath:   getEnv("DB_PATH", "history.db"),
			Targets:  getEnv("TARGETS_FILE", "config/targets.yaml"),
		},
		ProxyURL:  os.Getenv("PROXY_URL"),
		StatsCron: os.Getenv("STATS_CRON"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogJSON:   os.Getenv("LOG_JSON") == "true",
		LogFile:   getEnv("LOG_FILE", "monitor.log"),
	}

	cfg.Location = loadLocation(getEnv("TIMEZONE", DefaultTimezone))

	targets, err := LoadTargets(cfg.Files.Targets)
	if err != nil {
		return nil, err
	}
	cfg.Targets = targets

	return cfg, nil
}

// LoadTargets reads the watch target list. Index follows file order.
func LoadTargets(path string) ([]models.WatchTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read targets %s: %w", path, err)
	}

	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse targets %s: %w", path, err)
	}

	for i := range file.Targets {
		file.Targets[i].Index = i
	}
	return file.Targets, nil
}

// Now returns the current time in the configured zone.
func (c *Config) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func loadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	// no tzdata on the host; Asia/Tokyo has no DST so a fixed zone is exact
	return time.FixedZone("JST", 9*60*60)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
