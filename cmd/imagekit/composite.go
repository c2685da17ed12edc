package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit/imageutil"
)

type compositeOptions struct {
	mode  string
	alpha float64
	scale float64
}

func newCompositeCmd(a *app) *cobra.Command {
	opts := &compositeOptions{}

	modes := make([]string, len(imageutil.BlendModes))
	for i, m := range imageutil.BlendModes {
		modes[i] = m.String()
	}

	cmd := &cobra.Command{
		Use:   "composite A B OUT",
		Short: "Combine two images of the same size",
		Long:  "Combine two images of the same size. Modes: " + strings.Join(modes, ", "),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposite(a, opts, args[0], args[1], args[2])
		},
	}

	defaults := imageutil.DefaultCompositeOptions()
	f := cmd.Flags()
	f.StringVarP(&opts.mode, "mode", "m", "blend", "Compositing mode")
	f.Float64Var(&opts.alpha, "alpha", defaults.Alpha, "Weight of A for the blend mode")
	f.Float64Var(&opts.scale, "scale", defaults.Scale, "Weight of B for the add mode")
	return cmd
}

func runComposite(a *app, opts *compositeOptions, pathA, pathB, out string) error {
	mode, err := imageutil.ParseBlendMode(opts.mode)
	if err != nil {
		return err
	}

	imgA, err := imageutil.LoadImage(pathA)
	if err != nil {
		return err
	}
	imgB, err := imageutil.LoadImage(pathB)
	if err != nil {
		return err
	}

	result, err := imageutil.Composite(mode, imgA, imgB, imageutil.CompositeOptions{
		Alpha: opts.alpha,
		Scale: opts.scale,
	})
	if err != nil {
		return err
	}
	a.logger.WithField("mode", mode.String()).Debug("Composited")
	return a.save(result, out)
}
