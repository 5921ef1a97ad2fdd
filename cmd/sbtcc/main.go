/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/internal/config"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

var logger = flogging.MustGetLogger("sbtcc")

func main() {
	flags := pflag.NewFlagSet("sbtcc", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "Path to the configuration file")
	flags.String("log-spec", "", "Logging specification")
	flags.String("mint-policy", "", "Who may mint: owner-only or open")
	flags.Parse(os.Args[1:])

	conf, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load configuration: %s\n", err)
		os.Exit(2)
	}
	flogging.Init(conf.LoggingConfig())

	if err := start(conf); err != nil {
		logger.Errorf("Error starting chaincode: %s", err)
		os.Exit(1)
	}
}

func start(conf *config.Config) error {
	cc := chaincode.New(conf.LedgerRules())
	if conf.Chaincode.Address == "" {
		logger.Info("Starting chaincode under the peer")
		return shim.Start(cc)
	}

	server, err := newServer(conf, cc)
	if err != nil {
		return err
	}
	logger.Infof("Starting chaincode %s at %s", server.CCID, server.Address)
	return server.Start()
}

// newServer returns the server running cc as an external chaincode.
func newServer(conf *config.Config, cc shim.Chaincode) (*shim.ChaincodeServer, error) {
	if conf.Chaincode.CCID == "" {
		return nil, errors.New("chaincode.ccid is required to serve the chaincode")
	}
	tlsConf := conf.Chaincode.TLS
	if !tlsConf.Disabled && (tlsConf.Cert == "" || tlsConf.Key == "") {
		return nil, errors.New("chaincode.tls requires a certificate and a key unless disabled")
	}

	return &shim.ChaincodeServer{
		CCID:    conf.Chaincode.CCID,
		Address: conf.Chaincode.Address,
		CC:      cc,
		TLSProps: shim.TLSProperties{
			Disabled:      tlsConf.Disabled,
			Key:           []byte(tlsConf.Key),
			Cert:          []byte(tlsConf.Cert),
			ClientCACerts: []byte(strings.Join(tlsConf.ClientCACerts, "")),
		},
	}, nil
}
