package airsync

import "time"

// RemoteConfig is the tri-state switch controlling whether the sending
// machinery may run.
type RemoteConfig int

const (
	// ConfigOff forces remote functionality off.
	ConfigOff RemoteConfig = -1
	// ConfigConditionally enables sending only in a networked/multiplayer
	// setup.
	ConfigConditionally RemoteConfig = 0
	// ConfigOn forces sending on whenever aircraft exist.
	ConfigOn RemoteConfig = 1
)

// Deployment defaults.
const (
	DefaultGroup   = "239.255.1.1"
	DefaultPort    = 49788
	DefaultTTL     = 8
	DefaultBufSize = 8192

	DefaultSettingsInterval = 20 * time.Second
	DefaultBeaconInterval   = 15 * time.Second
	// DefaultFullRefreshSeconds is the window across which full aircraft
	// refreshes are staggered.
	DefaultFullRefreshSeconds = 10
	// DefaultMaxErrors is the consecutive-error count after which remote
	// functionality is given up for the rest of the process's life.
	DefaultMaxErrors = 5
)

// Config carries everything a Session needs. The zero value plus
// ApplyDefaults is usable; most callers start from DefaultConfig.
type Config struct {
	// Remote gates the sender role, see RemoteConfig.
	Remote RemoteConfig

	// PluginID is the truncated identifier stamped into every message
	// header.
	PluginID uint16
	// Name identifies this instance in Settings broadcasts.
	Name string

	// Settings broadcast content.
	MaxLabelDist            float32
	DefaultIcao             string
	CarIcaoType             string
	LogLevel                uint8
	LogModelMatch           bool
	ObjReplDataRefs         bool
	ObjReplTextures         bool
	LabelCutOffAtVisibility bool
	MapEnabled              bool
	MapLabels               bool
	HaveTCASControl         bool

	// Multicast transport.
	Group   string
	Port    int
	TTL     int
	BufSize int // bounds the size of any one datagram

	SettingsInterval    time.Duration
	BeaconInterval      time.Duration
	FullRefreshSeconds  int
	MaxErrors           int
}

// DefaultConfig returns a Config with all deployment defaults filled in.
func DefaultConfig() Config {
	c := Config{DefaultIcao: "A320", CarIcaoType: "ZZZC"}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Group == "" {
		c.Group = DefaultGroup
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.BufSize == 0 {
		c.BufSize = DefaultBufSize
	}
	if c.SettingsInterval == 0 {
		c.SettingsInterval = DefaultSettingsInterval
	}
	if c.BeaconInterval == 0 {
		c.BeaconInterval = DefaultBeaconInterval
	}
	if c.FullRefreshSeconds == 0 {
		c.FullRefreshSeconds = DefaultFullRefreshSeconds
	}
	if c.MaxErrors == 0 {
		c.MaxErrors = DefaultMaxErrors
	}
}
