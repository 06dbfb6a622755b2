package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/elslush/immudb4go/application"
	"github.com/elslush/immudb4go/crypto/sign"
	"github.com/elslush/immudb4go/pool"
	"github.com/elslush/immudb4go/schema"
	"github.com/elslush/immudb4go/state"

	"google.golang.org/grpc"
)

const (
	DefaultServerURL         = "localhost"
	DefaultServerPort        = 3322
	DefaultUsername          = "immudb"
	DefaultPassword          = "immudb"
	DefaultDatabase          = "defaultdb"
	DefaultHeartbeatInterval = time.Minute
	DefaultShutdownTimeout   = 2 * time.Second
	DefaultStateDir          = "states"
)

// ServiceFactory builds the RPC surface over a pooled connection.
type ServiceFactory func(conn pool.Connection) schema.ImmuService

// Options collects everything configurable on a client. Setters return
// the options themselves so they can be chained.
type Options struct {
	ServerURL  string
	ServerPort int
	Username   string
	Password   string
	Database   string

	HeartbeatInterval         time.Duration
	ConnectionShutdownTimeout time.Duration

	DeploymentInfoCheck bool
	ServerSigningKey    sign.PublicKey

	StateStore state.Store
	StateDir   string

	Pool           *pool.RandomAssignPool
	ServiceFactory ServiceFactory

	Logger *application.Logger
}

func DefaultOptions() *Options {
	return &Options{
		ServerURL:                 DefaultServerURL,
		ServerPort:                DefaultServerPort,
		Username:                  DefaultUsername,
		Password:                  DefaultPassword,
		Database:                  DefaultDatabase,
		HeartbeatInterval:         DefaultHeartbeatInterval,
		ConnectionShutdownTimeout: DefaultShutdownTimeout,
		DeploymentInfoCheck:       true,
		StateDir:                  DefaultStateDir,
		ServiceFactory:            defaultServiceFactory,
		Logger:                    application.NewNopLogger(),
	}
}

// FromConfig builds options from a loaded config file.
func FromConfig(conf *application.ClientConfig) *Options {
	opts := DefaultOptions()
	if conf.Server != "" {
		opts.ServerURL = conf.Server
	}
	if conf.Port != 0 {
		opts.ServerPort = conf.Port
	}
	if conf.Username != "" {
		opts.Username = conf.Username
	}
	if conf.Password != "" {
		opts.Password = conf.Password
	}
	if conf.Database != "" {
		opts.Database = conf.Database
	}
	if conf.StateDir != "" {
		opts.StateDir = conf.StateDir
	}
	if conf.DeploymentInfoCheck != nil {
		opts.DeploymentInfoCheck = *conf.DeploymentInfoCheck
	}
	opts.HeartbeatInterval = conf.HeartbeatInterval()
	opts.ServerSigningKey = conf.SigningPubKey
	if conf.Logger != nil {
		opts.Logger = application.NewLogger(conf.Logger)
	}
	return opts
}

func (opts *Options) SetServerURL(url string) *Options {
	opts.ServerURL = url
	return opts
}

func (opts *Options) SetServerPort(port int) *Options {
	opts.ServerPort = port
	return opts
}

func (opts *Options) SetCredentials(username, password string) *Options {
	opts.Username = username
	opts.Password = password
	return opts
}

func (opts *Options) SetDatabase(database string) *Options {
	opts.Database = database
	return opts
}

func (opts *Options) SetHeartbeatInterval(interval time.Duration) *Options {
	opts.HeartbeatInterval = interval
	return opts
}

func (opts *Options) SetConnectionShutdownTimeout(timeout time.Duration) *Options {
	opts.ConnectionShutdownTimeout = timeout
	return opts
}

func (opts *Options) SetDeploymentInfoCheck(check bool) *Options {
	opts.DeploymentInfoCheck = check
	return opts
}

func (opts *Options) SetServerSigningKey(key sign.PublicKey) *Options {
	opts.ServerSigningKey = key
	return opts
}

func (opts *Options) SetStateStore(store state.Store) *Options {
	opts.StateStore = store
	return opts
}

func (opts *Options) SetStateDir(dir string) *Options {
	opts.StateDir = dir
	return opts
}

func (opts *Options) SetPool(p *pool.RandomAssignPool) *Options {
	opts.Pool = p
	return opts
}

func (opts *Options) SetServiceFactory(f ServiceFactory) *Options {
	opts.ServiceFactory = f
	return opts
}

func (opts *Options) SetLogger(l *application.Logger) *Options {
	opts.Logger = l
	return opts
}

// Address normalizes the configured server URL into the dial target:
// scheme stripped, host lowercased, port appended.
func (opts *Options) Address() string {
	host := strings.ToLower(opts.ServerURL)
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	return host + ":" + strconv.Itoa(opts.ServerPort)
}

// defaultServiceFactory expects the pooled connection to be a gRPC
// client connection, which the default dialer always produces.
func defaultServiceFactory(conn pool.Connection) schema.ImmuService {
	cc, ok := conn.(grpc.ClientConnInterface)
	if !ok {
		return nil
	}
	return schema.NewGRPCService(cc)
}
