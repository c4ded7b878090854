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

// Package cmd builds the tabulua command tree, in cmd/cue/cmd's style: a
// root [cobra.Command] with one subcommand per operation, each RunE
// reporting failure by returning an error rather than calling os.Exit
// itself.
package cmd

import (
	"github.com/spf13/cobra"
)

// Root builds the tabulua command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "tabulua",
		Short:         "Check and introspect TabuLua packages",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newSchemaCmd())
	return root
}
