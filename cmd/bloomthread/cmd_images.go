package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
)

// bloomthread images:check
var imagesCheckCmd = &cobra.Command{
	Use:   "images:check",
	Short: "Probe every catalogue image and show which fall back",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		checker := imagecheck.New(imagecheck.OptionsFromConfig())
		defer checker.Close()

		return checkImages(cmd, checker, models.SampleProducts())
	},
}

func checkImages(cmd *cobra.Command, checker *imagecheck.Checker, products []models.Product) error {
	fallbacks := 0
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tRESULT\tURL")
	for _, p := range products {
		res := checker.Check(cmd.Context(), p.Img)
		verdict := "ok"
		if !res.OK {
			verdict = "fallback"
			fallbacks++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, verdict, res.Original)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	summary(cmd.OutOrStdout(), len(products), fallbacks)
	return nil
}

func summary(out io.Writer, total, fallbacks int) {
	if fallbacks == 0 {
		fmt.Fprintf(out, "✅  all %d images reachable\n", total)
		return
	}
	fmt.Fprintf(out, "⚠️  %d of %d images fall back\n", fallbacks, total)
}
