package main

import (
	"os"

	"github.com/aura-studio/lambda-hello/http"
	"github.com/spf13/cobra"
)

var routesOutput string

func init() {
	rootCmd.AddCommand(genRoutesCmd)
	genRoutesCmd.Flags().StringVarP(&routesOutput, "output", "o", "routes.json", "Where to write the routes file.")
}

var genRoutesCmd = &cobra.Command{
	Use:   "gen-routes <plan.json>",
	Short: "Generate a routes file from a terraform plan in JSON form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		routes, err := http.GenerateRoutes(plan)
		if err != nil {
			return err
		}
		if err := http.WriteRoutesFile(routesOutput, routes); err != nil {
			return err
		}
		log.Infof("Wrote %d routes to %s", len(routes), routesOutput)
		return nil
	},
}
