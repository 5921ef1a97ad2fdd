/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sbtctl

import (
	"github.com/hyperledger/fabric-sbt/internal/pkg/gateway"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func callCmd(e *env) *cobra.Command {
	var deposit string
	cmd := &cobra.Command{
		Use:   "call <signer-id> <contract-id> <method> [json-args]",
		Short: "Execute a transaction and print its outcome.",
		Long: "Execute a transaction signed by <signer-id> and print its outcome. " +
			"The command fails when the contract rejects the transaction.",
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := ledger.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			contract, err := ledger.ParseAccountID(args[1])
			if err != nil {
				return err
			}
			callArgs, err := jsonArg(args, 3)
			if err != nil {
				return err
			}
			var amount ledger.Amount
			if deposit != "" {
				if amount, err = ledger.ParseAmount(deposit); err != nil {
					return err
				}
			}

			return e.withHost(func(host *gateway.WorkerHost) error {
				outcome, err := host.Call(cmd.Context(), signer, contract, args[2], callArgs, amount)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
					return err
				}
				if outcome.Failed {
					return errors.Errorf("transaction %s failed: %s", outcome.TxID, outcome.Failure)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&deposit, "deposit", "d", "", "Attached deposit")
	return cmd
}

func viewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "view <contract-id> <method> [json-args]",
		Short: "Run a read-only call and print its value.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, err := ledger.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			viewArgs, err := jsonArg(args, 2)
			if err != nil {
				return err
			}
			return e.withHost(func(host *gateway.WorkerHost) error {
				value, err := host.View(cmd.Context(), contract, args[1], viewArgs)
				if err != nil {
					return err
				}
				if len(value) == 0 {
					_, err = cmd.OutOrStdout().Write([]byte("null\n"))
					return err
				}
				return printJSON(cmd.OutOrStdout(), value)
			})
		},
	}
}
