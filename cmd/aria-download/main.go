package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/aria-download/pkg/product"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output mode: Download, Count or Kml",
		Value:   product.OutputDownload.String(),
	}
	trackFlag = &cli.StringFlag{
		Name:    "track",
		Aliases: []string{"t"},
		Usage:   "relative orbit (track) number, e.g. 004",
	}
	bboxFlag = &cli.StringFlag{
		Name:    "bbox",
		Aliases: []string{"b"},
		Usage:   `bounding box as "S N W E", or a .shp, .geojson or .wkt file`,
	}
	workDirFlag = &cli.StringFlag{
		Name:    "workdir",
		Aliases: []string{"w"},
		Usage:   "directory for downloaded products and output files",
		Value:   "./products",
	}
	startFlag = &cli.StringFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "earliest acquisition date, YYYYMMDD",
	}
	endFlag = &cli.StringFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "latest acquisition date, YYYYMMDD",
	}
	daysLessFlag = &cli.IntFlag{
		Name:    "daysless",
		Aliases: []string{"l"},
		Usage:   "keep pairs with a temporal baseline shorter than N days",
	}
	daysMoreFlag = &cli.IntFlag{
		Name:    "daysmore",
		Aliases: []string{"m"},
		Usage:   "keep pairs with a temporal baseline longer than N days",
	}
	ifgFlag = &cli.StringFlag{
		Name:    "ifg",
		Aliases: []string{"i"},
		Usage:   "single interferogram, START_END as YYYYMMDD_YYYYMMDD",
	}
	directionFlag = &cli.StringFlag{
		Name:    "direction",
		Aliases: []string{"d"},
		Usage:   "flight direction: ascending (a) or descending (d)",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "print matching products and debug logging",
	}
)

// runFunc executes one validated query.
type runFunc func(ctx context.Context, params product.Params) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(run).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newCommand(run runFunc) *cli.Command {
	return &cli.Command{
		Name:  "aria-download",
		Usage: "Find, count, map or download ARIA Sentinel-1 interferogram products",
		Flags: []cli.Flag{
			outputFlag,
			trackFlag,
			bboxFlag,
			workDirFlag,
			startFlag,
			endFlag,
			daysLessFlag,
			daysMoreFlag,
			ifgFlag,
			directionFlag,
			verboseFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			params, err := paramsFromCommand(cmd)
			if err != nil {
				return err
			}
			return run(ctx, params)
		},
	}
}
