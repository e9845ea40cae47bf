// Command bloomthread runs the Bloom Thread storefront and its
// maintenance tasks:
//
//	bloomthread serve              # HTTP + gRPC health
//	bloomthread serve --migrate    # apply migrations first
//	bloomthread migrate
//	bloomthread migrate:rollback
//	bloomthread migrate:status
//	bloomthread route:list
//	bloomthread images:check       # probe the catalogue images
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations register themselves from init().
	_ "github.com/shashiranjanraj/bloomthread/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bloomthread",
	Short:         "Bloom Thread demo storefront",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(imagesCheckCmd)
}
