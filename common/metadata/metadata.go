/*
Copyright London Stock Exchange 2016 All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metadata

// Variables defined by the Makefile and passed in with ldflags
var Version = "latest"
var CommitSHA = "development build"

// ProgramName is the name reported by the sbtctl version command.
const ProgramName = "sbtctl"
