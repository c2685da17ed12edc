package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit/imageutil"
)

func newPatternCmd(a *app) *cobra.Command {
	var (
		kind          string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "pattern OUT",
		Short: "Write a generated test pattern",
		Long:  fmt.Sprintf("Write a generated test pattern. Kinds: %v", imageutil.Patterns),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := imageutil.CreatePattern(imageutil.Pattern(kind), width, height)
			if err != nil {
				return err
			}
			return a.save(img, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", string(imageutil.PatternCheckerboard), "Pattern kind")
	f.IntVar(&width, "width", 256, "Width in pixels")
	f.IntVar(&height, "height", 256, "Height in pixels")
	return cmd
}
