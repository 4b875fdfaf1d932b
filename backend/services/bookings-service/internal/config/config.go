package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-server-sdk/v7/ldcomponents"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string
	UniqueRunNumber  string
	UniqueRunnerID   string

	// Database / cache / events
	DBUrl        string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	// Notifications
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Auth. Nil means requests are scoped by the X-Tenant-ID header instead.
	RSAPublicKey *rsa.PublicKey

	// LaunchDarkly flags
	LDFlag_SeedDbWithTestData       bool
	LDFlag_UsingIsolatedSchema      bool
	LDFlag_CORSHighSecurity         bool
	LDFlag_PublishBookingEvents     bool
	LDFlag_SendBookingNotifications bool
	LDFlag_SendgridSandboxMode      bool
	LDFlag_SendgridFromEmail        string
	LDFlag_TwilioFromPhone          string
	LDFlag_StaleHoldCheckCron       string
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
	DefaultAppName      = "bookings-service"
	DefaultKafkaTopic   = "booking-lifecycle"
	DefaultStaleCron    = "@every 15m"
)

// build-time overrides
var (
	AppName             string
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads env vars (optionally from .env), overlays Bitwarden secrets
// when BWS_ACCESS_TOKEN is set, and evaluates the LaunchDarkly flags.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Failed to load .env file")
	}

	if AppName == "" {
		AppName = DefaultAppName
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	if LDServerContextKind == "" {
		LDServerContextKind = "service"
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}

	secrets := loadSecrets(env)

	dbURL := secrets("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL is missing (env or BWS)")
	}

	var pubKey *rsa.PublicKey
	if pubB64 := secrets("RSA_PUBLIC_KEY_BASE64"); pubB64 != "" {
		pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
		if err != nil {
			utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
		}
		if block, _ := pem.Decode(pubPEM); block == nil {
			utils.Logger.Fatal("Failed to decode PEM block for public key")
		}
		pubKey, err = jwt.ParseRSAPublicKeyFromPEM(pubPEM)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
		}
	} else {
		utils.Logger.Warn("RSA_PUBLIC_KEY_BASE64 not set; tenant scope comes from the X-Tenant-ID header")
	}

	kafkaTopic := os.Getenv("KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = DefaultKafkaTopic
	}

	cfg := &Config{
		OrganizationName: OrganizationName,
		AppName:          AppName,
		Env:              env,
		AppPort:          appPort,
		AppUrl:           appUrl,
		UniqueRunNumber:  UniqueRunNumber,
		UniqueRunnerID:   UniqueRunnerID,
		DBUrl:            dbURL,
		RedisURL:         secrets("REDIS_URL"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       kafkaTopic,
		TwilioAccountSID: secrets("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  secrets("TWILIO_AUTH_TOKEN"),
		SendGridAPIKey:   secrets("SENDGRID_API_KEY"),
		RSAPublicKey:     pubKey,
	}
	loadFlags(cfg, secrets("LD_SDK_KEY"))
	return cfg
}

// loadSecrets returns a lookup that prefers Bitwarden values and falls back to env.
func loadSecrets(env string) func(string) string {
	bws := map[string]string{}
	if utils.BWSConfigured() {
		client, err := utils.NewBWSSecretsClient()
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to initialize BWSSecretsClient")
		}
		defer client.Close()

		appSecretsName := fmt.Sprintf("%s-%s", AppName, env)
		bws, err = client.GetBWSSecrets(appSecretsName)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to fetch app secrets from BWS")
		}
		utils.Logger.Infof("Loaded %d secrets from BWS project %s", len(bws), appSecretsName)
	}
	return func(key string) string {
		if v, ok := bws[key]; ok && v != "" {
			return v
		}
		return os.Getenv(key)
	}
}

func loadFlags(cfg *Config, sdkKey string) {
	ldCfg := ld.Config{}
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY not set; LaunchDarkly runs offline with flag defaults")
		ldCfg.Offline = true
		ldCfg.DataSource = ldcomponents.ExternalUpdatesOnly()
	}
	ldClient, err := ld.MakeCustomClient(sdkKey, ldCfg, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	if sdkKey != "" && !ldClient.Initialized() {
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(key string, def bool) bool {
		v, err := ldClient.BoolVariation(key, ctx, def)
		if err != nil && sdkKey != "" {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
		}
		utils.Logger.Debugf("%s flag: %t", key, v)
		return v
	}
	stringFlag := func(key, def string) string {
		v, err := ldClient.StringVariation(key, ctx, def)
		if err != nil && sdkKey != "" {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
		}
		if v == "" {
			utils.Logger.Warnf("%s flag is empty, defaulting to %s", key, def)
			v = def
		}
		utils.Logger.Debugf("%s flag: %s", key, v)
		return v
	}

	cfg.LDFlag_SeedDbWithTestData = boolFlag("seed_db_with_test_data", false)
	cfg.LDFlag_UsingIsolatedSchema = boolFlag("using_isolated_schema", false)
	cfg.LDFlag_CORSHighSecurity = boolFlag("cors_high_security", false)
	cfg.LDFlag_PublishBookingEvents = boolFlag("publish_booking_events", true)
	cfg.LDFlag_SendBookingNotifications = boolFlag("send_booking_notifications", false)
	cfg.LDFlag_SendgridSandboxMode = boolFlag("sendgrid_sandbox_mode", true)
	cfg.LDFlag_SendgridFromEmail = stringFlag("sendgrid_from_email", "no-reply@estatecrm.example")
	cfg.LDFlag_TwilioFromPhone = stringFlag("twilio_from_phone", "+10005550006")
	cfg.LDFlag_StaleHoldCheckCron = stringFlag("stale_hold_check_cron", DefaultStaleCron)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Close() {}
