// Command imagekit filters, composites and batch-processes raster images.
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wbrown/imagekit/imageutil"
)

// app carries the persistent flags and the logger to every subcommand.
type app struct {
	debug   bool
	quality int
	format  string

	logger *logrus.Logger
}

func main() {
	a := &app{logger: logrus.StandardLogger()}
	if err := newRootCmd(a).Execute(); err != nil {
		a.logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "imagekit",
		Short:         "Convolution, compositing and batch recipes for raster images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = initLogger(a.debug, cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging with human-readable output")
	flags.IntVar(&a.quality, "quality", imageutil.DefaultQuality, "JPEG quality (1-100)")
	flags.StringVar(&a.format, "format", "", "Output format: png, jpg or bmp (default: from the output extension)")

	root.AddCommand(
		newFilterCmd(a),
		newCompositeCmd(a),
		newRunCmd(a),
		newKernelsCmd(),
		newDiffCmd(a),
		newPatternCmd(a),
	)
	return root
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// save writes img to path in the --format format, or the one implied by
// the extension.
func (a *app) save(img *imageutil.Buffer, path string) error {
	var (
		format imageutil.Format
		err    error
	)
	if a.format != "" {
		format, err = imageutil.ParseFormat(a.format)
	} else {
		format, err = imageutil.FormatFromPath(path)
	}
	if err != nil {
		return err
	}

	if err := imageutil.SaveImage(img, path, format, a.quality); err != nil {
		return err
	}
	a.logger.WithFields(logrus.Fields{
		"path":   path,
		"format": format.String(),
		"width":  img.Width(),
		"height": img.Height(),
	}).Info("Saved image")
	return nil
}
