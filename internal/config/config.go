// Package config provides functionality for managing configuration options
// for the application using a JSON config file, command-line flags and
// environment variables, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrStoreRequired is returned when the service runs deployed (PORT set by the
// platform) without any durable store configured.
var ErrStoreRequired = errors.New("no database configured: set DATABASE_URL or SQLITE_PATH when PORT is set")

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `json:"database_dsn"`

	// SQLitePath is the SQLite database file used when no DSN is given.
	SQLitePath string `json:"sqlite_path"`

	// FilePath is the journal file of the in-memory store.
	FilePath string `json:"file_storage_path"`

	// GRPCPort enables the gRPC health server when positive.
	GRPCPort int `json:"grpc_port"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// CodeLength is the number of characters in generated codes.
	CodeLength int `json:"code_length"`

	// MaxAttempts bounds code generation attempts per request.
	MaxAttempts int `json:"max_attempts"`

	// TrustProxy makes X-Forwarded-Proto/Host define the short URL origin.
	TrustProxy bool `json:"trust_proxy"`

	// EnablePprof indicates whether to enable pprof for performance profiling.
	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS indicates whether to serve TLS with autocert certificates.
	EnableHTTPS bool `json:"enable_https"`

	// TLSHosts is a comma separated list of hosts autocert may issue for.
	TLSHosts string `json:"tls_hosts"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`
}

func defaults() *Options {
	return &Options{
		Port:        ":5000",
		LogLevel:    "info",
		CodeLength:  7,
		MaxAttempts: 10,
		TrustProxy:  true,
	}
}

// Hosts returns TLSHosts split into a list.
func (o *Options) Hosts() []string {
	var hosts []string
	for _, h := range strings.Split(o.TLSHosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Parse reads configuration from os.Args and the environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs builds Options from defaults, the optional JSON config file,
// args and environment variables. A .env file in the working directory is
// loaded first without overriding variables that are already set.
func ParseArgs(args []string) (*Options, error) {
	_ = godotenv.Load()

	options := defaults()

	fs := flag.NewFlagSet("shortlink", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", options.Port, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn")
	fs.StringVar(&options.SQLitePath, "l", "", "path to sqlite database")
	fs.StringVar(&options.FilePath, "f", "", "path to storage file")
	fs.IntVar(&options.GRPCPort, "g", 0, "grpc health port, 0 disables")
	fs.StringVar(&options.LogLevel, "v", options.LogLevel, "log level")
	fs.IntVar(&options.CodeLength, "n", options.CodeLength, "short code length")
	fs.IntVar(&options.MaxAttempts, "r", options.MaxAttempts, "code generation attempts")
	fs.BoolVar(&options.TrustProxy, "x", options.TrustProxy, "trust X-Forwarded-* headers")
	fs.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	fs.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
	fs.StringVar(&options.TLSHosts, "t", "", "comma separated autocert hosts")
	fs.StringVar(&options.Config, "c", "", "path to json config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg := os.Getenv("CONFIG"); cfg != "" {
		options.Config = cfg
	}

	if options.Config != "" {
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		if err := applyFile(options, options.Config, set); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(options); err != nil {
		return nil, err
	}

	if err := options.validate(); err != nil {
		return nil, err
	}

	return options, nil
}

// applyFile copies values from the config file into options for every
// option not given on the command line.
func applyFile(options *Options, path string, set map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	file := defaults()
	if err := json.Unmarshal(data, file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	pick := func(flagName string, apply func()) {
		if !set[flagName] {
			apply()
		}
	}

	pick("a", func() { options.Port = file.Port })
	pick("d", func() { options.DatabaseDSN = file.DatabaseDSN })
	pick("l", func() { options.SQLitePath = file.SQLitePath })
	pick("f", func() { options.FilePath = file.FilePath })
	pick("g", func() { options.GRPCPort = file.GRPCPort })
	pick("v", func() { options.LogLevel = file.LogLevel })
	pick("n", func() { options.CodeLength = file.CodeLength })
	pick("r", func() { options.MaxAttempts = file.MaxAttempts })
	pick("x", func() { options.TrustProxy = file.TrustProxy })
	pick("p", func() { options.EnablePprof = file.EnablePprof })
	pick("s", func() { options.EnableHTTPS = file.EnableHTTPS })
	pick("t", func() { options.TLSHosts = file.TLSHosts })

	return nil
}

func applyEnv(options *Options) error {
	// PORT is what hosting platforms set; SERVER_ADDRESS wins when both are present.
	if port := os.Getenv("PORT"); port != "" {
		options.Port = ":" + port
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if sqlitePath := os.Getenv("SQLITE_PATH"); sqlitePath != "" {
		options.SQLitePath = sqlitePath
	}

	if storagePath := os.Getenv("FILE_STORAGE_PATH"); storagePath != "" {
		options.FilePath = storagePath
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if hosts := os.Getenv("TLS_HOSTS"); hosts != "" {
		options.TLSHosts = hosts
	}

	ints := map[string]*int{
		"GRPC_PORT":    &options.GRPCPort,
		"CODE_LENGTH":  &options.CodeLength,
		"MAX_ATTEMPTS": &options.MaxAttempts,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"TRUST_PROXY":  &options.TrustProxy,
		"ENABLE_PPROF": &options.EnablePprof,
		"ENABLE_HTTPS": &options.EnableHTTPS,
	}
	for name, dst := range bools {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
		}
	}

	return nil
}

func (o *Options) validate() error {
	if o.CodeLength <= 0 {
		return fmt.Errorf("code length must be positive, got %d", o.CodeLength)
	}

	if o.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", o.MaxAttempts)
	}

	if o.GRPCPort < 0 || o.GRPCPort > 65535 {
		return fmt.Errorf("grpc port out of range: %d", o.GRPCPort)
	}

	if o.EnableHTTPS && len(o.Hosts()) == 0 {
		return errors.New("https requires at least one host in TLS_HOSTS")
	}

	// Deployed without a database: refuse instead of losing links on restart.
	if os.Getenv("PORT") != "" && o.DatabaseDSN == "" && o.SQLitePath == "" && o.FilePath == "" {
		return ErrStoreRequired
	}

	return nil
}
