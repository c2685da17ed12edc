package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit"
	"github.com/wbrown/imagekit/imageutil"
)

type filterOptions struct {
	kernel    string
	values    string
	compose   string
	scale     float64
	normalize bool
}

func newFilterCmd(a *app) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter IN OUT",
		Short: "Convolve an image with a built-in or custom kernel",
		Example: `  imagekit filter --kernel sharpen in.png out.png
  imagekit filter --kernel gaussian_blur --normalize in.png out.jpg
  imagekit filter --values "1,2,1; 2,4,2; 1,2,1" --normalize in.png out.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(a, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.kernel, "kernel", "k", "default", "Built-in kernel (see 'imagekit kernels')")
	f.StringVar(&opts.values, "values", "", "Custom kernel rows separated by ';', e.g. \"0,-1,0; -1,5,-1; 0,-1,0\"")
	f.StringVar(&opts.compose, "compose", "", "Built-in kernel to convolve the kernel with first")
	f.Float64Var(&opts.scale, "scale", 1, "Multiply every kernel weight")
	f.BoolVar(&opts.normalize, "normalize", false, "Divide the kernel by the sum of its weights")
	return cmd
}

func runFilter(a *app, opts *filterOptions, in, out string) error {
	params := imagekit.Params{
		"type":      opts.kernel,
		"compose":   opts.compose,
		"scale":     opts.scale,
		"normalize": opts.normalize,
	}
	if opts.values != "" {
		params["values"] = opts.values
	}

	kernel, err := imagekit.KernelFromParams(params)
	if err != nil {
		return err
	}
	a.logger.WithFields(logrus.Fields{
		"width":  kernel.Width,
		"height": kernel.Height,
		"sum":    kernel.Sum(),
	}).Debug("Kernel built")

	img, err := imageutil.LoadImage(in)
	if err != nil {
		return err
	}
	result, err := imageutil.ApplyKernel(img, kernel)
	if err != nil {
		return err
	}
	return a.save(result, out)
}
