package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	port string

	gcalCalendarID      string
	gcalCredentialsPath string

	syncLookbackMinutes int
	syncInterval        time.Duration

	smtpHost       string
	smtpPort       int
	senderEmail    string
	senderPassword string

	facultyCSVPath string
	icsOutputDir   string
	rosterCacheTTL time.Duration

	metricCollectionInterval time.Duration

	location *time.Location
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		gcalCalendarID: func() string {
			calendarID := os.Getenv("GCAL_CALENDAR_ID")
			if calendarID == "" {
				slog.Warn("GCAL_CALENDAR_ID is not set, using primary")
				calendarID = "primary"
			}
			slog.Debug("env", "GCAL_CALENDAR_ID", calendarID)
			return calendarID
		}(),
		gcalCredentialsPath: func() string {
			credentialsPath := os.Getenv("GCAL_CREDENTIALS")
			if credentialsPath == "" {
				slog.Error("GCAL_CREDENTIALS is not set")
				os.Exit(1)
			}
			slog.Debug("env", "GCAL_CREDENTIALS", credentialsPath)
			return credentialsPath
		}(),

		syncLookbackMinutes: func() int {
			lookback := os.Getenv("SYNC_LOOKBACK_MINUTES")
			if lookback == "" {
				slog.Warn("SYNC_LOOKBACK_MINUTES is not set")
				lookback = "120"
			}
			minutes, err := strconv.Atoi(lookback)
			if err != nil || minutes <= 0 {
				slog.Error("invalid SYNC_LOOKBACK_MINUTES", "value", lookback, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SYNC_LOOKBACK_MINUTES", minutes)
			return minutes
		}(),
		syncInterval: func() time.Duration {
			syncInterval := os.Getenv("SYNC_INTERVAL")
			if syncInterval == "" {
				slog.Warn("SYNC_INTERVAL is not set")
				syncInterval = "10m"
			}
			duration, err := time.ParseDuration(syncInterval)
			if err != nil {
				slog.Error("invalid SYNC_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SYNC_INTERVAL", syncInterval, "duration", duration)
			return duration
		}(),

		smtpHost: func() string {
			smtpHost := os.Getenv("SMTP_HOST")
			if smtpHost == "" {
				smtpHost = "smtp.gmail.com"
			}
			slog.Debug("env", "SMTP_HOST", smtpHost)
			return smtpHost
		}(),
		smtpPort: func() int {
			smtpPort := os.Getenv("SMTP_PORT")
			if smtpPort == "" {
				smtpPort = "587"
			}
			port, err := strconv.Atoi(smtpPort)
			if err != nil {
				slog.Error("invalid SMTP_PORT", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SMTP_PORT", port)
			return port
		}(),
		senderEmail: func() string {
			senderEmail := os.Getenv("SENDER_EMAIL")
			if senderEmail == "" {
				slog.Warn("SENDER_EMAIL is not set, email notifications are disabled")
			}
			return senderEmail
		}(),
		senderPassword: func() string {
			senderPassword := os.Getenv("SENDER_PASSWORD")
			if senderPassword == "" {
				slog.Warn("SENDER_PASSWORD is not set, email notifications are disabled")
			}
			return senderPassword
		}(),

		facultyCSVPath: func() string {
			facultyCSVPath := os.Getenv("FACULTY_CSV")
			if facultyCSVPath == "" {
				facultyCSVPath = "data/faculty.csv"
			}
			slog.Debug("env", "FACULTY_CSV", facultyCSVPath)
			return facultyCSVPath
		}(),
		icsOutputDir: func() string {
			icsOutputDir := os.Getenv("ICS_OUTPUT_DIR")
			if icsOutputDir == "" {
				icsOutputDir = "data/ics"
			}
			slog.Debug("env", "ICS_OUTPUT_DIR", icsOutputDir)
			return icsOutputDir
		}(),
		rosterCacheTTL: func() time.Duration {
			rosterCacheTTL := os.Getenv("ROSTER_CACHE_TTL")
			if rosterCacheTTL == "" {
				rosterCacheTTL = "1h"
			}
			duration, err := time.ParseDuration(rosterCacheTTL)
			if err != nil {
				slog.Error("invalid ROSTER_CACHE_TTL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "ROSTER_CACHE_TTL", duration)
			return duration
		}(),

		metricCollectionInterval: func() time.Duration {
			metricCollectionInterval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if metricCollectionInterval == "" {
				metricCollectionInterval = "1m"
			}
			duration, err := time.ParseDuration(metricCollectionInterval)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", duration)
			return duration
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get GCAL_CALENDAR_ID env, default to primary
func (c *Config) GetGcalCalendarID() string {
	return c.gcalCalendarID
}

// Get GCAL_CREDENTIALS env
func (c *Config) GetGcalCredentialsPath() string {
	return c.gcalCredentialsPath
}

// Get SYNC_LOOKBACK_MINUTES env
func (c *Config) GetSyncLookbackMinutes() int {
	return c.syncLookbackMinutes
}

// Get SYNC_INTERVAL env
func (c *Config) GetSyncInterval() time.Duration {
	return c.syncInterval
}

// Get SMTP_HOST env
func (c *Config) GetSMTPHost() string {
	return c.smtpHost
}

// Get SMTP_PORT env
func (c *Config) GetSMTPPort() int {
	return c.smtpPort
}

// Get SENDER_EMAIL env
func (c *Config) GetSenderEmail() string {
	return c.senderEmail
}

// Get SENDER_PASSWORD env
func (c *Config) GetSenderPassword() string {
	return c.senderPassword
}

// Get FACULTY_CSV env
func (c *Config) GetFacultyCSVPath() string {
	return c.facultyCSVPath
}

// Get ICS_OUTPUT_DIR env
func (c *Config) GetICSOutputDir() string {
	return c.icsOutputDir
}

// Get ROSTER_CACHE_TTL env
func (c *Config) GetRosterCacheTTL() time.Duration {
	return c.rosterCacheTTL
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}
