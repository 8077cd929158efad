package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Port           string
	Env            string        // either prod or dev, dev disables https redirects and uses console logs
	JobsAPIURL     string        // base address of the jobs REST API, used for reads and writes
	JobsAPITimeout time.Duration // per request timeout against the jobs API
	SessionKey     []byte
	SiteName       string
	SiteTagline    string
	SiteHost       string
	SentryDSN      string
	CacheTTL       time.Duration
	RedisURL       string // when set, job cache lives in redis instead of process memory
	RedisPassword  string
	RedisDB        int
	LogLevel       string
	URLProtocol    string
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	jobsAPIURL := strings.TrimRight(os.Getenv("JOBS_API_URL"), "/")
	if jobsAPIURL == "" {
		return Config{}, fmt.Errorf("JOBS_API_URL cannot be empty")
	}
	jobsAPITimeout, err := durationFromEnv("JOBS_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	var sessionKeyBytes []byte
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" && env != "dev" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	if sessionKeyString != "" {
		sessionKeyBytes, err = base64.StdEncoding.DecodeString(sessionKeyString)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
		}
	} else {
		sessionKeyBytes = []byte("dev-session-key-not-for-production")
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		siteName = "Job Service Jenkins"
	}
	siteTagline := os.Getenv("SITE_TAGLINE")
	if siteTagline == "" {
		siteTagline = "Find your next opportunity"
	}
	siteHost := os.Getenv("SITE_HOST")
	if siteHost == "" {
		siteHost = "localhost:" + port
	}
	cacheTTL, err := durationFromEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		redisDB, err = strconv.Atoi(redisDBStr)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to convert REDIS_DB to int")
		}
	}
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}
	urlProtocol := "http://"
	if !strings.EqualFold(env, "dev") {
		urlProtocol = "https://"
	}

	return Config{
		Port:           port,
		Env:            env,
		JobsAPIURL:     jobsAPIURL,
		JobsAPITimeout: jobsAPITimeout,
		SessionKey:     sessionKeyBytes,
		SiteName:       siteName,
		SiteTagline:    siteTagline,
		SiteHost:       siteHost,
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		CacheTTL:       cacheTTL,
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		LogLevel:       logLevel,
		URLProtocol:    urlProtocol,
	}, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse %s as duration", key)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
