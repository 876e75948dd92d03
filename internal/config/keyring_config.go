package config

import (
	"time"

	"github.com/rs/zerolog"
	"github/chapool/go-hwkeyring/internal/util"
)

const (
	// DefaultHDPath is the base path the device exports its extended public key for.
	DefaultHDPath = "m/44'/1'/0'/0"
	// DefaultPerPage is the number of accounts returned per page.
	DefaultPerPage = 5
	// DefaultMaxIndex bounds the brute-force index recovery.
	DefaultMaxIndex = 1000
	// DefaultLinkOrigin is the origin of the device link page.
	DefaultLinkOrigin = "http://localhost:4200"
	// DefaultUnlockCooldown separates the unlock popup from the next device request.
	DefaultUnlockCooldown = 2 * time.Second
	// DefaultRequestTimeout bounds a single device request; user confirmation can take a while.
	DefaultRequestTimeout = 5 * time.Minute
)

type Keyring struct {
	Name     string
	HDPath   string
	PerPage  int
	MaxIndex uint32
	// ChainID is applied to legacy transactions without one, 0 disables replay protection for them.
	ChainID int64
}

type Device struct {
	LinkOrigin     string
	UnlockCooldown time.Duration
	RequestTimeout time.Duration
}

type Bridge struct {
	Debug           bool
	ListenAddress   string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type Store struct {
	Path string
}

type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
	Caller             bool
}

// Server aggregates the whole runtime configuration.
type Server struct {
	Keyring Keyring
	Device  Device
	Bridge  Bridge
	Store   Store
	Logger  Logger
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests
// (and it would be a bad thing to do anyways with parallel testing).
// Do NOT use os.Setenv / os.Unsetenv in tests utilizing DefaultServiceConfigFromEnv()!
func DefaultServiceConfigFromEnv() Server {
	// An `.env.local` file in your project root can override the currently set ENV variables.
	//
	// We never automatically apply `.env.local` when running "go test" as these ENV variables
	// may be sensitive (e.g. secrets to external APIs) and applying them modifies the process
	// global "os.Env" state (it should be applied via t.Setenv instead).
	if !testing() {
		DotEnvTryLoad(".env.local", nil)
	}

	linkOrigin := util.GetEnv("KEYRING_LINK_ORIGIN", DefaultLinkOrigin)

	return Server{
		Keyring: Keyring{
			Name:     util.GetEnv("KEYRING_NAME", "default"),
			HDPath:   util.GetEnv("KEYRING_HD_PATH", DefaultHDPath),
			PerPage:  util.GetEnvAsInt("KEYRING_PER_PAGE", DefaultPerPage),
			MaxIndex: util.GetEnvAsUint32("KEYRING_MAX_INDEX", DefaultMaxIndex),
			ChainID:  int64(util.GetEnvAsInt("KEYRING_CHAIN_ID", 0)),
		},
		Device: Device{
			LinkOrigin:     linkOrigin,
			UnlockCooldown: util.GetEnvAsDuration("KEYRING_UNLOCK_COOLDOWN", DefaultUnlockCooldown),
			RequestTimeout: util.GetEnvAsDuration("KEYRING_REQUEST_TIMEOUT", DefaultRequestTimeout),
		},
		Bridge: Bridge{
			Debug:           util.GetEnvAsBool("KEYRING_BRIDGE_DEBUG", false),
			ListenAddress:   util.GetEnv("KEYRING_BRIDGE_ADDRESS", "127.0.0.1:4300"),
			AllowedOrigins:  util.GetEnvAsStringArr("KEYRING_BRIDGE_ALLOWED_ORIGINS", []string{linkOrigin}),
			ShutdownTimeout: util.GetEnvAsDuration("KEYRING_BRIDGE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: Store{
			Path: util.GetEnv("KEYRING_STORE_PATH", "./data/keyring"),
		},
		Logger: Logger{
			Level:              util.LogLevelFromString(util.GetEnv("LOGGER_LEVEL", zerolog.InfoLevel.String())),
			PrettyPrintConsole: util.GetEnvAsBool("LOGGER_PRETTY_PRINT_CONSOLE", false),
			Caller:             util.GetEnvAsBool("LOGGER_CALLER", false),
		},
	}
}

// LoggerConfig converts the logger section for util.SetupLogger.
func (s Server) LoggerConfig() util.LoggerConfig {
	return util.LoggerConfig{
		Level:              s.Logger.Level,
		PrettyPrintConsole: s.Logger.PrettyPrintConsole,
		Caller:             s.Logger.Caller,
	}
}
