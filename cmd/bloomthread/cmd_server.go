package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bloomthread/internal/kernel"
	"github.com/shashiranjanraj/bloomthread/internal/server"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/sse"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
)

var serveMigrate bool

// bloomthread serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the storefront",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(server.Options{Migrate: serveMigrate})
	},
}

// bloomthread route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Run pending migrations before serving (STORE_DRIVER=database)")
}

// printRoutes builds a throwaway kernel on the memory store, so it needs
// no running backends.
func printRoutes(out io.Writer) error {
	images := imagecheck.New(imagecheck.Options{Workers: 1})
	defer images.Close()

	k, err := kernel.New(kernel.Options{
		Store:   kv.NewMemory(),
		Images:  images,
		Events:  event.NewDispatcher(),
		Hub:     ws.NewHub(),
		Streams: sse.NewBroker(),
	})
	if err != nil {
		return err
	}

	infos := k.Router.Routes()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No named routes registered.")
		return nil
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

