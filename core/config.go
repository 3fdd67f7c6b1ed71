package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application configuration, loaded once at startup.
var Conf *Config

type (
	Config struct {
		Debug           bool
		TestMode        bool
		Env             string
		Build           string
		AppName         string
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		DefaultFromName string
		DefaultFromAddr string
		SendgridApiKey  string
		RollbarToken    string
		Server          ServerConfig
		Database        DatabaseConfig
		RFID            RFIDConfig
		SMS             SMSConfig
		Billing         BillingConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	RFIDConfig struct {
		Enabled bool
		Port    string
		Baud    int
	}

	SMSConfig struct {
		// Providers is the ordered fallback list; the first is the default.
		Providers        []string
		TwilioAccountSid string
		TwilioAuthToken  string
		TwilioFromNumber string
		NexmoApiKey      string
		NexmoApiSecret   string
		NexmoFrom        string
		TextBeltApiKey   string
		RatePeriod       time.Duration
		RateBurst        int
	}

	BillingConfig struct {
		// HorizonMonths is how far ahead of "now" the scheduler bills.
		HorizonMonths int
		// MaxScheduleMonths caps the total month range a single enrollment
		// may generate; larger ranges are rejected.
		MaxScheduleMonths int
		// DefaultTeacherShare is used when a class has no teacher on record.
		DefaultTeacherShare float64
	}
)

func (c Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c Config) IsProd() bool { return c.Env == "PROD" }

func (c ServerConfig) Address() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c DatabaseConfig) Address() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Durus")
	v.SetDefault("secretKey", "v3ry-s3cr3t-k3y-ch4ng3-m3-1n-pr0d")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Durus")
	v.SetDefault("defaultFromAddr", "noreply@localhost")

	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("jwtExpirationDelta", 8*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("shutdownTimeout", 20*time.Second)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "durus")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("rfidEnabled", false)
	v.SetDefault("rfidPort", "/dev/ttyUSB0")
	v.SetDefault("rfidBaud", 9600)

	v.SetDefault("smsProviders", []string{"textbelt", "twilio", "nexmo"})
	v.SetDefault("smsRatePeriod", time.Minute)
	v.SetDefault("smsRateBurst", 3)

	v.SetDefault("billingHorizonMonths", 12)
	v.SetDefault("billingMaxScheduleMonths", 120)
	v.SetDefault("billingDefaultTeacherShare", 0.7)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromAddr"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetInt("serverPort"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		RFID: RFIDConfig{
			Enabled: v.GetBool("rfidEnabled"),
			Port:    v.GetString("rfidPort"),
			Baud:    v.GetInt("rfidBaud"),
		},
		SMS: SMSConfig{
			Providers:        v.GetStringSlice("smsProviders"),
			TwilioAccountSid: v.GetString("twilioAccountSid"),
			TwilioAuthToken:  v.GetString("twilioAuthToken"),
			TwilioFromNumber: v.GetString("twilioFromNumber"),
			NexmoApiKey:      v.GetString("nexmoApiKey"),
			NexmoApiSecret:   v.GetString("nexmoApiSecret"),
			NexmoFrom:        v.GetString("nexmoFrom"),
			TextBeltApiKey:   v.GetString("textBeltApiKey"),
			RatePeriod:       v.GetDuration("smsRatePeriod"),
			RateBurst:        v.GetInt("smsRateBurst"),
		},
		Billing: BillingConfig{
			HorizonMonths:       v.GetInt("billingHorizonMonths"),
			MaxScheduleMonths:   v.GetInt("billingMaxScheduleMonths"),
			DefaultTeacherShare: v.GetFloat64("billingDefaultTeacherShare"),
		},
	}
}
