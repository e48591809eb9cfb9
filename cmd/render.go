package cmd

import (
	"building-planner/client"
	"building-planner/core"
	"building-planner/render"
	"building-planner/stores"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// maxImageSize matches the limit of the HTTP render endpoint.
const maxImageSize = 4096

type renderOptions struct {
	output        string
	server        string
	noAnnotations bool
	width         int
	height        int
}

var renderOpts renderOptions

// drawingSource is the part of a store the render command needs.
type drawingSource interface {
	Get(ctx context.Context, id string) (*core.Drawing, error)
}

var renderCmd = &cobra.Command{
	Use:   "render <drawing-id>",
	Short: "Render a stored drawing to PNG",
	Long: `Render loads a drawing from the configured storage, or from a running
server when --server is set, and writes it as a PNG image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src drawingSource
		if renderOpts.server != "" {
			src = client.New(renderOpts.server)
		} else {
			src = stores.GetStore(cfg)
		}

		var out io.Writer = cmd.OutOrStdout()
		if renderOpts.output != "" && renderOpts.output != "-" {
			f, err := os.Create(renderOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := renderDrawing(cmd.Context(), src, args[0], out, renderOpts); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"drawing_id": args[0], "output": renderOpts.output}).Info("Drawing rendered")
		return nil
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.output, "output", "o", "", "Write the PNG to this file instead of stdout")
	f.StringVar(&renderOpts.server, "server", "", "Load the drawing from a running server, e.g. http://localhost:3001")
	f.BoolVar(&renderOpts.noAnnotations, "no-annotations", false, "Leave out measurement labels")
	f.IntVar(&renderOpts.width, "width", render.DefaultWidth, "Image width in pixels")
	f.IntVar(&renderOpts.height, "height", render.DefaultHeight, "Image height in pixels")
	rootCmd.AddCommand(renderCmd)
}

func renderDrawing(ctx context.Context, src drawingSource, id string, w io.Writer, opts renderOptions) error {
	if opts.width < 1 || opts.height < 1 || opts.width > maxImageSize || opts.height > maxImageSize {
		return fmt.Errorf("invalid image size %dx%d, each side must be 1..%d", opts.width, opts.height, maxImageSize)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := src.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load drawing: %w", err)
	}

	raster := render.NewRaster(opts.width, opts.height)
	render.Draw(raster, render.Scene{Shapes: d.Shapes, ShowAnnotations: !opts.noAnnotations})
	return raster.EncodePNG(w)
}
