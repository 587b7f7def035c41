package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datadrivenconstruction/skillmig/pkg/manifest"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of claw.json",
	Run: func(_ *cobra.Command, _ []string) {
		out, err := json.MarshalIndent(manifest.Schema(), "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render schema")
			return
		}
		fmt.Println(string(out))
	},
}
