package application

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/elslush/immudb4go/crypto/sign"
	"github.com/elslush/immudb4go/utils"
)

// ClientConfig is the on-disk configuration of a client executable:
// where the server is, which credentials to present, where to keep the
// verified state and, optionally, the server's public signing key.
type ClientConfig struct {
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`

	StateDir            string `toml:"state_dir,omitempty"`
	SignPubkeyPath      string `toml:"sign_pubkey_path,omitempty"`
	DeploymentInfoCheck *bool  `toml:"deployment_info_check,omitempty"`

	HeartbeatIntervalSec int `toml:"heartbeat_interval_sec,omitempty"`

	Logger *LoggerConfig `toml:"logger,omitempty"`

	SigningPubKey sign.PublicKey `toml:"-"`
}

// LoadClientConfig returns a client's configuration read from the given
// file, with the signing public key (if configured) parsed from its
// key file.
func LoadClientConfig(file string) (*ClientConfig, error) {
	var conf ClientConfig
	if _, err := toml.DecodeFile(file, &conf); err != nil {
		return nil, fmt.Errorf("Failed to load config: %v", err)
	}

	if conf.SignPubkeyPath != "" {
		signPath := utils.ResolvePath(conf.SignPubkeyPath, file)
		raw, err := os.ReadFile(signPath)
		if err != nil {
			return nil, fmt.Errorf("Cannot read signing key: %v", err)
		}
		pk, err := sign.ParsePublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("Signing public-key must be %d bytes (got %d)",
				sign.PublicKeySize, len(raw))
		}
		conf.SigningPubKey = pk
	}

	return &conf, nil
}

// HeartbeatInterval returns the configured keep-alive cadence.
func (conf *ClientConfig) HeartbeatInterval() time.Duration {
	if conf.HeartbeatIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(conf.HeartbeatIntervalSec) * time.Second
}

// Save writes the configuration to the given path.
func (conf *ClientConfig) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(conf)
}
