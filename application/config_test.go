package application

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elslush/immudb4go/crypto/sign"
)

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")

	content := `
server = "Immudb.Example.COM"
port = 3322
username = "writer"
password = "secret"
database = "appdb"
state_dir = "states"
heartbeat_interval_sec = 30
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadClientConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Server != "Immudb.Example.COM" || conf.Port != 3322 {
		t.Fatalf("server config mismatch: %+v", conf)
	}
	if conf.Username != "writer" || conf.Password != "secret" || conf.Database != "appdb" {
		t.Fatalf("credential config mismatch: %+v", conf)
	}
	if conf.HeartbeatInterval() != 30*time.Second {
		t.Fatalf("heartbeat = %v", conf.HeartbeatInterval())
	}
}

func TestHeartbeatIntervalDefault(t *testing.T) {
	conf := &ClientConfig{}
	if conf.HeartbeatInterval() != time.Minute {
		t.Fatalf("default heartbeat = %v", conf.HeartbeatInterval())
	}
}

func TestLoadClientConfigWithSigningKey(t *testing.T) {
	dir := t.TempDir()

	key, err := sign.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	pk, _ := key.Public()
	if err := os.WriteFile(filepath.Join(dir, "sign.pub"), pk, 0o644); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(dir, "config.toml")
	content := `
server = "localhost"
port = 3322
sign_pubkey_path = "sign.pub"
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadClientConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(conf.SigningPubKey) != sign.PublicKeySize {
		t.Fatal("signing key was not loaded")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")

	check := false
	conf := &ClientConfig{
		Server:              "localhost",
		Port:                3322,
		Username:            "immudb",
		Password:            "immudb",
		Database:            "defaultdb",
		DeploymentInfoCheck: &check,
	}
	if err := conf.Save(file); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadClientConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server != conf.Server || loaded.Port != conf.Port {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if loaded.DeploymentInfoCheck == nil || *loaded.DeploymentInfoCheck {
		t.Fatal("deployment check flag lost")
	}
}
