package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"permission-sync/internal/utils/runtime"
)

const (
	developmentFlag = "development"
	modeFlag        = "mode"
	serverNameFlag  = "server-name"

	apiBaseURLFlag = "api-base-url"
	apiKeyFlag     = "api-key"
	apiTimeoutFlag = "api-timeout"

	storeFlag      = "store"
	mongoDBURIFlag = "mongodb-uri"

	hubURLFlag            = "hub-url"
	hubReconnectDelayFlag = "hub-reconnect-delay"
	hubPortFlag           = "hub-port"

	channelNameFlag = "channel-name"

	kafkaEnabledFlag = "kafka-enabled"
	kafkaHostFlag    = "kafka-host"
	kafkaPortFlag    = "kafka-port"

	grpcPortFlag = "grpc-port"
	replyTTLFlag = "reply-ttl"
)

// Mode is the role a process plays in the network. The string values are
// also the `type` announced to the hub.
type Mode string

const (
	ModeProxy   Mode = "proxy"
	ModeBackend Mode = "backend"
	ModeHub     Mode = "hub"
)

type Config struct {
	Development bool
	Mode        Mode
	ServerName  string

	API     APIConfig
	Store   string
	MongoDB MongoDBConfig
	Hub     HubConfig
	Kafka   KafkaConfig

	ChannelName string
	GRPCPort    int
	ReplyTTL    time.Duration
}

type APIConfig struct {
	BaseURL string
	Key     string
	Timeout time.Duration
}

type MongoDBConfig struct {
	URI     string
	Timeout time.Duration
}

type HubConfig struct {
	URL            string
	ReconnectDelay time.Duration
	// Port is only used when running as the hub relay.
	Port int
}

type KafkaConfig struct {
	Enabled bool
	Host    string
	Port    int
}

func LoadGlobalConfig() (*Config, error) {
	viper.SetDefault(developmentFlag, true)
	viper.SetDefault(modeFlag, string(ModeBackend))
	viper.SetDefault(serverNameFlag, "backend-1")
	viper.SetDefault(apiBaseURLFlag, "http://localhost:3000/api")
	viper.SetDefault(apiKeyFlag, "")
	viper.SetDefault(apiTimeoutFlag, 30*time.Second)
	viper.SetDefault(storeFlag, "api")
	viper.SetDefault(mongoDBURIFlag, "mongodb://localhost:27017")
	viper.SetDefault(hubURLFlag, "ws://localhost:3000/ws")
	viper.SetDefault(hubReconnectDelayFlag, 5*time.Second)
	viper.SetDefault(hubPortFlag, 3000)
	viper.SetDefault(channelNameFlag, "core:channel")
	viper.SetDefault(kafkaEnabledFlag, false)
	viper.SetDefault(kafkaHostFlag, "localhost")
	viper.SetDefault(kafkaPortFlag, 9092)
	viper.SetDefault(grpcPortFlag, 10010)
	viper.SetDefault(replyTTLFlag, 30*time.Minute)

	pflag.Bool(developmentFlag, viper.GetBool(developmentFlag), "Development mode")
	pflag.String(modeFlag, viper.GetString(modeFlag), "Process role: proxy, backend or hub")
	pflag.String(serverNameFlag, viper.GetString(serverNameFlag), "Name announced to the hub")
	pflag.String(apiBaseURLFlag, viper.GetString(apiBaseURLFlag), "Record store API base URL")
	pflag.String(apiKeyFlag, viper.GetString(apiKeyFlag), "Shared API key")
	pflag.Duration(apiTimeoutFlag, viper.GetDuration(apiTimeoutFlag), "Record store request timeout")
	pflag.String(storeFlag, viper.GetString(storeFlag), "Record store backend: api or mongo")
	pflag.String(mongoDBURIFlag, viper.GetString(mongoDBURIFlag), "MongoDB URI")
	pflag.String(hubURLFlag, viper.GetString(hubURLFlag), "Broadcast hub websocket URL")
	pflag.Duration(hubReconnectDelayFlag, viper.GetDuration(hubReconnectDelayFlag), "Delay between hub reconnect attempts")
	pflag.Int32(hubPortFlag, viper.GetInt32(hubPortFlag), "Listen port in hub mode")
	pflag.String(channelNameFlag, viper.GetString(channelNameFlag), "Point-to-point channel identifier")
	pflag.Bool(kafkaEnabledFlag, viper.GetBool(kafkaEnabledFlag), "Publish change events to Kafka")
	pflag.String(kafkaHostFlag, viper.GetString(kafkaHostFlag), "Kafka host")
	pflag.Int32(kafkaPortFlag, viper.GetInt32(kafkaPortFlag), "Kafka port")
	pflag.Int32(grpcPortFlag, viper.GetInt32(grpcPortFlag), "gRPC port")
	pflag.Duration(replyTTLFlag, viper.GetDuration(replyTTLFlag), "How long reply targets are remembered")
	pflag.Parse()

	runtime.Must(viper.BindPFlags(pflag.CommandLine))

	// Bind the viper flags to environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range []string{
		developmentFlag, modeFlag, serverNameFlag, apiBaseURLFlag, apiKeyFlag, apiTimeoutFlag,
		storeFlag, mongoDBURIFlag, hubURLFlag, hubReconnectDelayFlag, hubPortFlag, channelNameFlag,
		kafkaEnabledFlag, kafkaHostFlag, kafkaPortFlag, grpcPortFlag, replyTTLFlag,
	} {
		runtime.Must(viper.BindEnv(key))
	}

	cfg := &Config{
		Development: viper.GetBool(developmentFlag),
		Mode:        Mode(viper.GetString(modeFlag)),
		ServerName:  viper.GetString(serverNameFlag),
		API: APIConfig{
			BaseURL: viper.GetString(apiBaseURLFlag),
			Key:     viper.GetString(apiKeyFlag),
			Timeout: viper.GetDuration(apiTimeoutFlag),
		},
		Store: viper.GetString(storeFlag),
		MongoDB: MongoDBConfig{
			URI:     viper.GetString(mongoDBURIFlag),
			Timeout: viper.GetDuration(apiTimeoutFlag),
		},
		Hub: HubConfig{
			URL:            viper.GetString(hubURLFlag),
			ReconnectDelay: viper.GetDuration(hubReconnectDelayFlag),
			Port:           int(viper.GetInt32(hubPortFlag)),
		},
		Kafka: KafkaConfig{
			Enabled: viper.GetBool(kafkaEnabledFlag),
			Host:    viper.GetString(kafkaHostFlag),
			Port:    int(viper.GetInt32(kafkaPortFlag)),
		},
		ChannelName: viper.GetString(channelNameFlag),
		GRPCPort:    int(viper.GetInt32(grpcPortFlag)),
		ReplyTTL:    viper.GetDuration(replyTTLFlag),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeProxy, ModeBackend, ModeHub:
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}

	if c.Store != "api" && c.Store != "mongo" {
		return fmt.Errorf("invalid store %q", c.Store)
	}

	if c.ServerName == "" {
		return fmt.Errorf("%s must not be empty", serverNameFlag)
	}

	if c.Hub.ReconnectDelay <= 0 {
		return fmt.Errorf("%s must be positive", hubReconnectDelayFlag)
	}
	return nil
}
