package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Kommo CRM (contact directory)
	KommoBaseURL         string
	KommoAccessToken     string
	KommoPipelineID      string
	KommoStatusInitial   string
	KommoStatusScheduled string
	KommoFieldCompany    string
	KommoFieldService    string
	KommoFieldSource     string

	// SendGrid transactional email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Twilio voice + messaging
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioCallerID      string
	TwilioWhatsAppFrom  string
	TwilioSMSFrom       string
	DefaultCountryCode  string
	ProviderHTTPTimeout time.Duration

	BookingURL          string
	CalcomWebhookSecret string
	ActionLogPath       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		KommoBaseURL:         getEnv("KOMMO_BASE_URL", ""),
		KommoAccessToken:     getEnv("KOMMO_ACCESS_TOKEN", ""),
		KommoPipelineID:      getEnv("KOMMO_PIPELINE_ID", ""),
		KommoStatusInitial:   getEnv("KOMMO_STATUS_ID_INICIAL", ""),
		KommoStatusScheduled: getEnv("KOMMO_STATUS_ID_AGENDADO", ""),
		KommoFieldCompany:    getEnv("KOMMO_FIELD_ID_EMPRESA", ""),
		KommoFieldService:    getEnv("KOMMO_FIELD_ID_SERVICIO", ""),
		KommoFieldSource:     getEnv("KOMMO_FIELD_ID_FUENTE", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Javier Virtual"),

		TwilioAccountSID:    getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:     getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioCallerID:      getEnv("TWILIO_CALLER_ID", ""),
		TwilioWhatsAppFrom:  getEnv("TWILIO_WHATSAPP_SENDER", ""),
		TwilioSMSFrom:       getEnv("TWILIO_SMS_SENDER", ""),
		DefaultCountryCode:  getEnv("DEFAULT_COUNTRY_CODE", "+52"),
		ProviderHTTPTimeout: getEnvAsDuration("PROVIDER_HTTP_TIMEOUT", 20*time.Second),

		BookingURL:          getEnv("BOOKING_URL", "https://cal.com"),
		CalcomWebhookSecret: getEnv("CALCOM_WEBHOOK_SECRET", ""),
		ActionLogPath:       getEnv("ACTION_LOG_PATH", "data/actions_log.json"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
