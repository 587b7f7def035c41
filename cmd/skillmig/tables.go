package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the effective keyword tables as YAML",
	Long: `Print the keyword tables used for classification. The output is a valid
tables file: save it, edit it and pass it back with --tables.`,
	Run: func(_ *cobra.Command, _ []string) {
		tables, err := keywords.Load(viper.GetString("tables"))
		if err != nil {
			presenter.Error(err, "Failed to load keyword tables")
			os.Exit(1)
		}
		out, err := tables.Marshal()
		if err != nil {
			presenter.Error(err, "Failed to render keyword tables")
			os.Exit(1)
		}
		fmt.Print(string(out))
	},
}
