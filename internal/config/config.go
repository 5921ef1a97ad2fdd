/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"strings"
	"time"

	"github.com/hyperledger/fabric-sbt/common/fabhttp"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/common/viperutil"
	"github.com/hyperledger/fabric-sbt/core/operations"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("sbt.config")

const (
	// EnvPrefix prefixes environment overrides, e.g. SBT_LEDGER_MINT_POLICY.
	EnvPrefix = "SBT"
	// ConfigName is the stem of the configuration file searched for.
	ConfigName = "sbt"
)

// Config is the configuration of the sbtctl and sbtcc processes.
type Config struct {
	Logging    Logging    `mapstructure:"logging" yaml:"logging"`
	Ledger     Ledger     `mapstructure:"ledger" yaml:"ledger"`
	Sandbox    Sandbox    `mapstructure:"sandbox" yaml:"sandbox"`
	Operations Operations `mapstructure:"operations" yaml:"operations"`
	Gateway    Gateway    `mapstructure:"gateway" yaml:"gateway"`
	Chaincode  Chaincode  `mapstructure:"chaincode" yaml:"chaincode"`
}

type Logging struct {
	Spec   string `mapstructure:"spec" yaml:"spec"`
	Format string `mapstructure:"format" yaml:"format,omitempty"`
}

type Ledger struct {
	MintPolicy ledger.MintPolicy `mapstructure:"mint_policy" yaml:"mint_policy"`
	Storage    Storage           `mapstructure:"storage" yaml:"storage"`
}

type Storage struct {
	BytePrice          ledger.Amount `mapstructure:"byte_price" yaml:"byte_price"`
	EntryOverheadBytes uint64        `mapstructure:"entry_overhead_bytes" yaml:"entry_overhead_bytes"`
}

type Sandbox struct {
	RootAccount       ledger.AccountID      `mapstructure:"root_account" yaml:"root_account"`
	RootBalance       ledger.Amount         `mapstructure:"root_balance" yaml:"root_balance"`
	SubAccountBalance ledger.Amount         `mapstructure:"subaccount_balance" yaml:"subaccount_balance"`
	StateDB           sandbox.StateDBConfig `mapstructure:"statedb" yaml:"statedb"`
}

type TLS struct {
	Enabled            bool     `mapstructure:"enabled" yaml:"enabled"`
	CertFile           string   `mapstructure:"cert_file" yaml:"cert_file,omitempty"`
	KeyFile            string   `mapstructure:"key_file" yaml:"key_file,omitempty"`
	ClientCertRequired bool     `mapstructure:"client_cert_required" yaml:"client_cert_required"`
	ClientCACertFiles  []string `mapstructure:"client_ca_cert_files" yaml:"client_ca_cert_files,omitempty"`
}

type Metrics struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
}

type Operations struct {
	ListenAddress string  `mapstructure:"listen_address" yaml:"listen_address"`
	TLS           TLS     `mapstructure:"tls" yaml:"tls"`
	Metrics       Metrics `mapstructure:"metrics" yaml:"metrics"`
}

type Gateway struct {
	ListenAddress  string        `mapstructure:"listen_address" yaml:"listen_address"`
	TLS            TLS           `mapstructure:"tls" yaml:"tls"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// ChaincodeTLS holds PEM material for the chaincode server. Each value can be
// given inline or as {file: <path>}.
type ChaincodeTLS struct {
	Disabled      bool     `mapstructure:"disabled" yaml:"disabled"`
	Cert          string   `mapstructure:"cert" yaml:"cert,omitempty"`
	Key           string   `mapstructure:"key" yaml:"-"`
	ClientCACerts []string `mapstructure:"client_ca_certs" yaml:"client_ca_certs,omitempty"`
}

// Chaincode configures sbtcc. An empty Address runs the chaincode under a
// peer; otherwise sbtcc serves it as an external chaincode.
type Chaincode struct {
	CCID    string       `mapstructure:"ccid" yaml:"ccid"`
	Address string       `mapstructure:"address" yaml:"address"`
	TLS     ChaincodeTLS `mapstructure:"tls" yaml:"tls"`
}

// FlagBindings maps command line flags to the configuration keys they
// override.
var FlagBindings = map[string]string{
	"log-spec":        "logging.spec",
	"mint-policy":     "ledger.mint_policy",
	"statedb-backend": "sandbox.statedb.backend",
	"statedb-path":    "sandbox.statedb.path",
	"listen-address":  "gateway.listen_address",
	"operations":      "operations.listen_address",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.spec", "info")
	v.SetDefault("logging.format", "")

	v.SetDefault("ledger.mint_policy", string(ledger.MintPolicyOwnerOnly))
	v.SetDefault("ledger.storage.byte_price", ledger.DefaultBytePrice)
	v.SetDefault("ledger.storage.entry_overhead_bytes", ledger.DefaultEntryOverheadBytes)

	v.SetDefault("sandbox.root_account", sandbox.DefaultRootAccount)
	v.SetDefault("sandbox.root_balance", sandbox.DefaultRootBalance)
	v.SetDefault("sandbox.subaccount_balance", sandbox.DefaultSubAccountBalance)
	v.SetDefault("sandbox.statedb.backend", sandbox.BackendMemory)
	v.SetDefault("sandbox.statedb.path", "")
	v.SetDefault("sandbox.statedb.cache_size", 0)

	v.SetDefault("operations.listen_address", "127.0.0.1:9443")
	setTLSDefaults(v, "operations.tls")
	v.SetDefault("operations.metrics.provider", "prometheus")

	v.SetDefault("gateway.listen_address", "127.0.0.1:8080")
	setTLSDefaults(v, "gateway.tls")
	v.SetDefault("gateway.request_timeout", "30s")

	v.SetDefault("chaincode.ccid", "")
	v.SetDefault("chaincode.address", "")
	v.SetDefault("chaincode.tls.disabled", true)
	v.SetDefault("chaincode.tls.cert", "")
	v.SetDefault("chaincode.tls.key", "")
	v.SetDefault("chaincode.tls.client_ca_certs", []string{})
}

func setTLSDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+".enabled", false)
	v.SetDefault(prefix+".cert_file", "")
	v.SetDefault(prefix+".key_file", "")
	v.SetDefault(prefix+".client_cert_required", false)
	v.SetDefault(prefix+".client_ca_cert_files", []string{})
}

// Load reads the configuration. An explicit path must exist; otherwise
// sbt.yaml is searched for in viperutil.ConfigPaths and defaults apply when
// none is found. Environment variables prefixed with SBT override both, and
// the flags listed in FlagBindings override everything when set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// variables set by peers for external chaincode
	v.BindEnv("chaincode.ccid", "CHAINCODE_ID")
	v.BindEnv("chaincode.address", "CHAINCODE_SERVER_ADDRESS")

	if flags != nil {
		for name, key := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag '%s'", name)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		for _, p := range viperutil.ConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	err := v.ReadInConfig()
	switch err.(type) {
	case nil:
		logger.Debugf("loaded configuration from %s", v.ConfigFileUsed())
	case viper.ConfigFileNotFoundError:
		logger.Debugf("no %s.yaml found, using defaults", ConfigName)
	default:
		return nil, errors.Wrap(err, "failed to read configuration")
	}

	conf := &Config{}
	if err := viperutil.EnhancedExactUnmarshal(v, conf); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if err := c.Sandbox.RootAccount.Validate(); err != nil {
		return errors.WithMessage(err, "sandbox.root_account")
	}
	switch c.Sandbox.StateDB.Backend {
	case sandbox.BackendMemory, sandbox.BackendLevelDB, sandbox.BackendSQLite:
	default:
		return errors.Errorf("sandbox.statedb.backend: unknown backend '%s'", c.Sandbox.StateDB.Backend)
	}
	switch c.Operations.Metrics.Provider {
	case "prometheus", "disabled":
	default:
		return errors.Errorf("operations.metrics.provider: unknown provider '%s'", c.Operations.Metrics.Provider)
	}
	if c.Gateway.RequestTimeout < 0 {
		return errors.Errorf("gateway.request_timeout: %s is negative", c.Gateway.RequestTimeout)
	}
	return nil
}

// LedgerRules returns the ledger configured by the ledger section.
func (c *Config) LedgerRules() *ledger.Ledger {
	return &ledger.Ledger{
		Policy: c.Ledger.MintPolicy,
		Pricing: ledger.StoragePricing{
			BytePrice:          c.Ledger.Storage.BytePrice,
			EntryOverheadBytes: c.Ledger.Storage.EntryOverheadBytes,
		},
	}
}

// SandboxOptions returns the worker options of the sandbox section.
func (c *Config) SandboxOptions() sandbox.Options {
	return sandbox.Options{
		RootAccount:       c.Sandbox.RootAccount,
		RootBalance:       c.Sandbox.RootBalance,
		SubAccountBalance: c.Sandbox.SubAccountBalance,
		StateDB:           c.Sandbox.StateDB,
		Ledger:            c.LedgerRules(),
	}
}

// OperationsOptions returns the operations server options.
func (c *Config) OperationsOptions() operations.Options {
	return operations.Options{
		Options: fabhttp.Options{
			ListenAddress: c.Operations.ListenAddress,
			TLS:           c.Operations.TLS.fabhttp(),
		},
		Metrics: operations.MetricsOptions{
			Provider: c.Operations.Metrics.Provider,
		},
	}
}

// GatewayOptions returns the options of the gateway HTTP server.
func (c *Config) GatewayOptions() fabhttp.Options {
	return fabhttp.Options{
		ListenAddress: c.Gateway.ListenAddress,
		TLS:           c.Gateway.TLS.fabhttp(),
	}
}

func (t TLS) fabhttp() fabhttp.TLS {
	return fabhttp.TLS{
		Enabled:            t.Enabled,
		CertFile:           t.CertFile,
		KeyFile:            t.KeyFile,
		ClientCertRequired: t.ClientCertRequired,
		ClientCACertFiles:  t.ClientCACertFiles,
	}
}

// LoggingConfig returns the flogging configuration.
func (c *Config) LoggingConfig() flogging.Config {
	return flogging.Config{
		Format:  c.Logging.Format,
		LogSpec: c.Logging.Spec,
	}
}
