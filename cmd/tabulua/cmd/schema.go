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
	"gopkg.in/yaml.v3"
)

func newSchemaCmd() *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "schema <dir>",
		Short: "Print the schema snapshot of a package's registered types",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			lp, err := loadPackage(args[0])
			if err != nil {
				return err
			}
			if !lp.sink.Ok() {
				fmt.Fprint(c.ErrOrStderr(), errors.Print(lp.sink))
				return fmt.Errorf("%s: %d error(s) loading package", lp.manifest.Name, lp.sink.Errors())
			}

			descs := lp.ctx.Introspect(names)
			out, err := yaml.Marshal(descs)
			if err != nil {
				return err
			}
			fmt.Fprint(c.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&names, "type", nil, "limit the snapshot to these type names (default: every registered type)")
	return cmd
}
