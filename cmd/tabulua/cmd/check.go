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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabulua/tabulua/errors"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Parse, assemble, and validate a package directory's TSV files",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			lp, err := loadPackage(args[0])
			if err != nil {
				return err
			}
			runValidators(lp)

			if out := errors.Print(lp.sink); out != "" {
				fmt.Fprint(c.OutOrStdout(), out)
			}
			if !lp.sink.Ok() {
				return fmt.Errorf("%s: %d error(s), %d warning(s)", lp.manifest.Name, lp.sink.Errors(), lp.sink.Warnings())
			}
			fmt.Fprintf(c.OutOrStdout(), "%s: ok (%d warning(s))\n", lp.manifest.Name, lp.sink.Warnings())
			return nil
		},
	}
}
