package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit/imageutil"
)

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff A B",
		Short: "Print MSE, PSNR and the largest channel difference of two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgA, err := imageutil.LoadImage(args[0])
			if err != nil {
				return err
			}
			imgB, err := imageutil.LoadImage(args[1])
			if err != nil {
				return err
			}

			mse, err := imageutil.MSE(imgA, imgB)
			if err != nil {
				return err
			}
			psnr, _ := imageutil.PSNR(imgA, imgB)
			maxDiff, _ := imageutil.MaxDiff(imgA, imgB)

			a.logger.WithField("pixels", imgA.Width()*imgA.Height()).Debug("Compared images")
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "MSE:      %.4f\n", mse)
			fmt.Fprintf(w, "PSNR:     %.2f dB\n", psnr)
			fmt.Fprintf(w, "Max diff: %d\n", maxDiff)
			return nil
		},
	}
}
