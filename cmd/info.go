// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var infoOutput string

var infoCmd = &cobra.Command{
	Use:               "info <network>",
	Short:             "Print the deployment record of a network",
	ValidArgsFunction: listNetworks,
	Args:              cobra.ExactArgs(1),
	Long: `Print the deployment record of a network, including every market created on it.

Use ` + "`ctf list`" + ` to see the networks that have a record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := deploymentStore().Load(args[0])
		if err != nil {
			return err
		}
		return writeFormatted(cmd.OutOrStdout(), config, infoOutput)
	},
}

// writeFormatted writes v as indented JSON or as YAML. YAML goes through JSON first so
// both formats share the same field names.
func writeFormatted(out io.Writer, v interface{}, format string) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	switch format {
	case "json":
	case "yaml":
		var generic interface{}
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		if b, err = yaml.Marshal(generic); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid output '%s'", format)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func init() {
	infoCmd.Flags().StringVarP(&infoOutput, "output", "o", "json", "output format (\"yaml\"|\"json\")")
	rootCmd.AddCommand(infoCmd)
}
