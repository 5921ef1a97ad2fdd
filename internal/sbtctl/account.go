/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sbtctl

import (
	"github.com/hyperledger/fabric-sbt/internal/pkg/gateway"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/spf13/cobra"
)

func accountCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage sandbox accounts: create|view.",
	}
	cmd.AddCommand(accountCreateCmd(e))
	cmd.AddCommand(accountViewCmd(e))
	return cmd
}

func accountCreateCmd(e *env) *cobra.Command {
	var (
		parent  string
		balance string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create the sub-account <name>.<parent>.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial *ledger.Amount
			if balance != "" {
				amount, err := ledger.ParseAmount(balance)
				if err != nil {
					return err
				}
				initial = &amount
			}
			return e.withHost(func(host *gateway.WorkerHost) error {
				info, err := host.CreateAccount(cmd.Context(), ledger.AccountID(parent), args[0], initial)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&parent, "parent", "p", "", "Funding account, defaults to the root account")
	flags.StringVarP(&balance, "balance", "b", "", "Initial balance, defaults to sandbox.subaccount_balance")
	return cmd
}

func accountViewCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "view <account-id>",
		Short: "Show an account.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ledger.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			return e.withHost(func(host *gateway.WorkerHost) error {
				info, err := host.AccountInfo(id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
}

func deployCmd(e *env) *cobra.Command {
	var codeID string
	cmd := &cobra.Command{
		Use:   "deploy <account-id>",
		Short: "Deploy a contract to an account.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ledger.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			return e.withHost(func(host *gateway.WorkerHost) error {
				info, err := host.Deploy(cmd.Context(), id, codeID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
	cmd.Flags().StringVar(&codeID, "code", sandbox.DefaultCodeID, "Registered contract code")
	return cmd
}
