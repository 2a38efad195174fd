package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-r",
	"-u", "-p", "-b", "-g", "-e",
	"-rates-url", "-rates-ttl", "-ai-url", "-ai-model",
	"-max-upload", "-rps", "-burst", "-cron", "-log-level",
}

func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the REST API")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token lifetime (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token lifetime (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for invoice files")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RatesBaseURL, "rates-url", config.RatesBaseURL, "exchange rate API base URL")
	fs.DurationVar(&config.RatesCacheTTL, "rates-ttl", config.RatesCacheTTL, "exchange rate cache TTL")
	fs.StringVar(&config.VisionBaseURL, "ai-url", config.VisionBaseURL, "OpenAI-compatible API base URL")
	fs.StringVar(&config.VisionModel, "ai-model", config.VisionModel, "vision model used for invoices")

	fs.Int64Var(&config.MaxUploadBytes, "max-upload", config.MaxUploadBytes, "max invoice upload size (bytes)")
	fs.Float64Var(&config.RateLimitRPS, "rps", config.RateLimitRPS, "API requests per second")
	fs.IntVar(&config.RateLimitBurst, "burst", config.RateLimitBurst, "API request burst")
	fs.StringVar(&config.RecurringSchedule, "cron", config.RecurringSchedule, "recurring expense schedule")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
