/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/hyperledger/fabric-sbt/internal/sbtctl"
)

func main() {
	// On failure Cobra prints the error string, so we only need to exit
	// with a non-0 status
	if sbtctl.NewRootCommand().Execute() != nil {
		os.Exit(1)
	}
}
