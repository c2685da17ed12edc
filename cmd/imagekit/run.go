package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run RECIPE",
		Short: "Run a TOML or YAML recipe",
		Long: `Run a TOML or YAML recipe. Paths inside the recipe are relative to the
recipe file. --quality and --format override the recipe when given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := imagekit.LoadRecipe(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("quality") {
				recipe.Quality = a.quality
			}
			if cmd.Flags().Changed("format") {
				recipe.Format = a.format
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			p := imagekit.NewPipeline(imagekit.WithLogger(a.logger))
			result, err := p.Run(ctx, recipe)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, s := range result.Steps {
				fmt.Fprintf(w, "%3d  %-14s %5dx%-5d %v\n", s.Index, s.Op, s.Width, s.Height, s.Duration)
			}
			fmt.Fprintf(w, "wrote %s (%s, %dx%d, PSNR %.2f dB)\n",
				result.Output, result.Format, result.Width, result.Height, result.PSNR)
			return nil
		},
	}
}
