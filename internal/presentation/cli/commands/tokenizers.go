package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/beancounter/internal/domain/tokenizer"
	"github.com/jbctechsolutions/beancounter/internal/presentation/cli/output"
)

// tokenizerInfo is the JSON form of a catalog entry.
type tokenizerInfo struct {
	Number     int    `json:"number"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Default    bool   `json:"default"`
}

// NewTokenizersCmd creates the command listing the tokenizer catalog.
func NewTokenizersCmd(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "tokenizers",
		Aliases: []string{"list"},
		Short:   "List the available tokenizers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, globals)
			if err != nil {
				return err
			}

			defaultNumber := tokenizer.DefaultNumber
			if cfg, err := loadConfig(globals.ConfigFile); err == nil {
				defaultNumber = cfg.Tokenizer.Default
			}

			infos := make([]tokenizerInfo, 0, tokenizer.Size())
			table := output.TableData{Headers: []string{"#", "IDENTIFIER", "NAME", "KIND"}}
			for _, spec := range tokenizer.Catalog() {
				infos = append(infos, tokenizerInfo{
					Number:     spec.Number,
					Identifier: spec.Identifier,
					Name:       spec.DisplayName,
					Kind:       spec.Kind.String(),
					Default:    spec.Number == defaultNumber,
				})
				number := strconv.Itoa(spec.Number)
				if spec.Number == defaultNumber {
					number += "*"
				}
				table.Rows = append(table.Rows, []string{number, spec.Identifier, spec.DisplayName, spec.Kind.String()})
			}

			return formatter.Render(infos, table)
		},
	}
}
