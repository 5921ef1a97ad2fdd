/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sbtctl

import (
	"encoding/json"
	"io"

	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/common/metadata"
	"github.com/hyperledger/fabric-sbt/internal/config"
	"github.com/hyperledger/fabric-sbt/internal/pkg/gateway"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = flogging.MustGetLogger("sbtctl")

// env is shared by the commands of one invocation.
type env struct {
	configPath string
	config     *config.Config

	// onReady is called by serve once both servers listen.
	onReady func(operationsAddr, gatewayAddr string)
}

// NewRootCommand returns the sbtctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&env{})
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:          metadata.ProgramName,
		Short:        "Operate a soulbound certificate contract in a local sandbox.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(e.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			flogging.Init(conf.LoggingConfig())
			e.config = conf
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&e.configPath, "config", "c", "", "Path to the configuration file")
	flags.String("log-spec", "", "Logging specification, e.g. info or sbt.sandbox=debug:info")
	flags.String("mint-policy", "", "Who may mint: owner-only or open")
	flags.String("statedb-backend", "", "State database: memory, leveldb or sqlite")
	flags.String("statedb-path", "", "Location of a persistent state database")
	flags.String("listen-address", "", "Gateway listen address")
	flags.String("operations", "", "Operations server listen address")

	cmd.AddCommand(accountCmd(e))
	cmd.AddCommand(deployCmd(e))
	cmd.AddCommand(callCmd(e))
	cmd.AddCommand(viewCmd(e))
	cmd.AddCommand(serveCmd(e))
	cmd.AddCommand(configCmd(e))
	cmd.AddCommand(versionCmd())

	return cmd
}

// withHost opens the configured worker for the duration of fn.
func (e *env) withHost(fn func(host *gateway.WorkerHost) error) error {
	worker, err := sandbox.NewWorker(e.config.SandboxOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := worker.TearDown(); err != nil {
			logger.Warnf("failed to tear down worker: %s", err)
		}
	}()
	return fn(&gateway.WorkerHost{Worker: worker})
}

func printJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	_, err = out.Write(append(b, '\n'))
	return err
}

// jsonArg returns the optional JSON argument at position i.
func jsonArg(args []string, i int) (json.RawMessage, error) {
	if len(args) <= i {
		return nil, nil
	}
	if !json.Valid([]byte(args[i])) {
		return nil, errors.Errorf("arguments must be a JSON document, got '%s'", args[i])
	}
	return json.RawMessage(args[i]), nil
}
