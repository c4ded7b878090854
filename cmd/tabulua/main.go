// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tabulua is a thin front-end over the tabulua core: it walks a
// package directory, loads its manifest and TSV files, and either checks
// them (validators + type errors) or prints their schema snapshot. It
// performs all of the I/O spec §1 places outside the core; the core
// itself (package tabulua and below) never touches a filesystem.
package main

import (
	"os"

	"github.com/tabulua/tabulua/cmd/tabulua/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
