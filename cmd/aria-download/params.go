package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/aria-download/pkg/product"
)

func paramsFromCommand(cmd *cli.Command) (product.Params, error) {
	var p product.Params

	mode, err := product.ParseOutputMode(cmd.String(outputFlag.Name))
	if err != nil {
		return p, err
	}
	p.Output = mode
	p.Track = cmd.String(trackFlag.Name)
	p.BBox = cmd.String(bboxFlag.Name)
	p.Verbose = cmd.Bool(verboseFlag.Name)

	if p.WorkDir, err = filepath.Abs(cmd.String(workDirFlag.Name)); err != nil {
		return p, fmt.Errorf("%w: workdir: %w", product.ErrInvalidParameter, err)
	}

	if s := cmd.String(directionFlag.Name); s != "" {
		if p.Direction, err = product.ParseDirection(s); err != nil {
			return p, err
		}
	}

	if p.Start, err = optionalDate(cmd.String(startFlag.Name)); err != nil {
		return p, err
	}
	if p.End, err = optionalDate(cmd.String(endFlag.Name)); err != nil {
		return p, err
	}

	if s := cmd.String(ifgFlag.Name); s != "" {
		pair, err := product.ParsePair(s)
		if err != nil {
			return p, err
		}
		p.Pair = &pair
	}

	if cmd.IsSet(daysLessFlag.Name) {
		n := int(cmd.Int(daysLessFlag.Name))
		p.DaysLess = &n
	}
	if cmd.IsSet(daysMoreFlag.Name) {
		n := int(cmd.Int(daysMoreFlag.Name))
		p.DaysMore = &n
	}

	return p, p.Validate()
}

func optionalDate(s string) (*product.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := product.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
