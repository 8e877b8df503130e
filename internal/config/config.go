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

const (
	minCommentSaveDelay = time.Second
	maxCommentSaveDelay = 3 * time.Second
)

type Config struct {
	Port                string
	Env                 string // either prod or dev, dev disables the https redirect
	APIBaseURL          string // backend REST api owning applications and payments
	APITimeout          time.Duration
	SessionKey          []byte
	SentryDSN           string
	CommentSaveDelay    time.Duration // quiet period before a comment draft is written
	PageSize            int           // applications per page on the dashboards
	PaymentDefaultTotal int64         // fee plan of an application without a ledger
	PaymentCurrency     string
	RedisURL            string // enables the submission rate limiter when set
	SubmissionsPerHour  int    // public form submissions allowed per client ip
	CacheTTL            time.Duration
	SiteName            string
	SiteHost            string
	SupportEmail        string // displayed on the site for support queries
	URLProtocol         string
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	apiBaseURL := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL cannot be empty")
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = "prod"
	}
	apiTimeout, err := durationOr("API_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	commentSaveDelay, err := durationOr("COMMENT_SAVE_DELAY", maxCommentSaveDelay)
	if err != nil {
		return Config{}, err
	}
	if commentSaveDelay < minCommentSaveDelay {
		commentSaveDelay = minCommentSaveDelay
	}
	if commentSaveDelay > maxCommentSaveDelay {
		commentSaveDelay = maxCommentSaveDelay
	}
	pageSize, err := intOr("PAGE_SIZE", 10)
	if err != nil {
		return Config{}, err
	}
	if pageSize <= 0 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive")
	}
	paymentDefaultTotal, err := intOr("PAYMENT_DEFAULT_TOTAL", 85000)
	if err != nil {
		return Config{}, err
	}
	if paymentDefaultTotal < 0 {
		return Config{}, fmt.Errorf("PAYMENT_DEFAULT_TOTAL cannot be negative")
	}
	paymentCurrency := strings.ToUpper(os.Getenv("PAYMENT_CURRENCY"))
	if paymentCurrency == "" {
		paymentCurrency = "PKR"
	}
	submissionsPerHour, err := intOr("SUBMISSIONS_PER_HOUR", 10)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationOr("CACHE_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		siteName = "College Of Skill Development"
	}
	siteHost := os.Getenv("SITE_HOST")
	if siteHost == "" {
		siteHost = "localhost:" + port
	}
	supportEmail := os.Getenv("SUPPORT_EMAIL")
	if supportEmail == "" {
		supportEmail = "hr@cisd.edu.pk"
	}
	urlProtocol := "https"
	if env == "dev" {
		urlProtocol = "http"
	}

	return Config{
		Port:                port,
		Env:                 env,
		APIBaseURL:          apiBaseURL,
		APITimeout:          apiTimeout,
		SessionKey:          sessionKeyBytes,
		SentryDSN:           os.Getenv("SENTRY_DSN"),
		CommentSaveDelay:    commentSaveDelay,
		PageSize:            pageSize,
		PaymentDefaultTotal: int64(paymentDefaultTotal),
		PaymentCurrency:     paymentCurrency,
		RedisURL:            os.Getenv("REDIS_URL"),
		SubmissionsPerHour:  submissionsPerHour,
		CacheTTL:            cacheTTL,
		SiteName:            siteName,
		SiteHost:            siteHost,
		SupportEmail:        supportEmail,
		URLProtocol:         urlProtocol,
	}, nil
}

func intOr(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse %s", key)
	}
	return n, nil
}

// durationOr accepts Go durations ("3s") or a bare number of seconds.
func durationOr(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to parse %s", key)
	}
	return d, nil
}
