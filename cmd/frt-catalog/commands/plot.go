package commands

import (
	"context"
	"fmt"
	"io"

	"gonum.org/v1/plot/vg"

	"github.com/gridcode-frt/frt-go/internal/frtplot"
)

// RunPlot runs the plot command.
func RunPlot(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("plot", stderr, &storePath)
	output := fs.String("o", "", "Output file; the extension selects png, svg or pdf")
	title := fs.String("title", "", "Chart title")
	widthCm := fs.Float64("width", 16, "Width in cm")
	heightCm := fs.Float64("height", 10, "Height in cm")
	labels := fs.Bool("labels", true, "Label points with test ids")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	key, err := catalogArg(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if *output == "" {
		*output = key.String() + ".png"
	}

	store, err := openExisting(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if store != nil {
		defer store.Close()
	}

	c, err := loadCatalog(context.Background(), store, key)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	opts := frtplot.Options{
		Title:  *title,
		Width:  vg.Length(*widthCm) * vg.Centimeter,
		Height: vg.Length(*heightCm) * vg.Centimeter,
		Labels: *labels,
	}
	if err := frtplot.Save(c, *output, opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "wrote %s chart to %s\n", c.Key(), *output)
	return exitSuccess
}
