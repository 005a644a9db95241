package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brainzone/internal/models"
	"brainzone/pkg/atlas"
	"brainzone/pkg/classifier"
	"brainzone/pkg/config"
	"brainzone/pkg/labels"
	"brainzone/pkg/markups"
)

// runFlags are command line overrides of the configuration file
type runFlags struct {
	sideLength int
	variant    string
	workers    int
	atlasDir   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.sideLength, "side-length", 0, "edge of the sampling cube in voxels (overrides config)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "lookup table variant name (overrides config)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "points classified concurrently (overrides config)")
	cmd.Flags().StringVar(&f.atlasDir, "atlas", "", "directory of PNG label slices (overrides config)")
}

// apply copies the flags that were set onto c and validates the result
func (f *runFlags) apply(cmd *cobra.Command, c *config.Config) error {
	if cmd.Flags().Changed("side-length") {
		c.Classification.SideLength = f.sideLength
	}
	if cmd.Flags().Changed("variant") {
		c.Classification.LUTVariant = f.variant
	}
	if cmd.Flags().Changed("workers") {
		c.Classification.Workers = f.workers
	}
	if cmd.Flags().Changed("atlas") {
		c.Atlas.SliceDir = f.atlasDir
	}
	if c.Atlas.SliceDir == "" {
		return eris.Wrap(models.ErrConfiguration, "no atlas slice directory: set atlas.sliceDir or --atlas")
	}
	return c.Validate()
}

func loadAtlas(c *config.Config) (*atlas.Volume, error) {
	transform, err := c.TransformMatrix()
	if err != nil {
		return nil, err
	}
	return atlas.LoadSlices(c.Atlas.SliceDir, transform)
}

// unknownCodes lists, ascending, the atlas codes the lookup table does
// not name. Points whose neighborhood touches one of them fail with
// UnknownLabel.
func unknownCodes(vol *atlas.Volume, lut *labels.LUT) []int {
	var missing []int
	for code := range vol.Codes() {
		if _, ok := lut.Name(code); !ok {
			missing = append(missing, code)
		}
	}
	sort.Ints(missing)
	return missing
}

func classifyCmd() *cobra.Command {
	var (
		flags      runFlags
		pointsPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Annotate every selected contact of a markups file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			if outPath == "" {
				outPath = defaultOutPath(pointsPath)
			}

			// setup: any failure here aborts before a point is touched
			res, err := classifier.LoadResources(cfg)
			if err != nil {
				return err
			}
			vol, err := loadAtlas(cfg)
			if err != nil {
				return err
			}
			if missing := unknownCodes(vol, res.LUT); len(missing) > 0 {
				zap.L().Warn("classify: atlas codes missing from lookup table, check the lookup table variant",
					zap.Ints("codes", missing),
					zap.String("variant", cfg.Classification.LUTVariant),
				)
			}
			points, err := markups.Load(pointsPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			c := classifier.NewClassifier(res, classifier.Params{
				SideLength: cfg.Classification.SideLength,
				Workers:    cfg.Classification.Workers,
				Progress: func(done, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rClassifying points: %.1f%% complete", float64(done)/float64(total)*100)
				},
			})

			start := time.Now()
			report, runErr := c.Run(ctx, points, vol)
			fmt.Fprintln(cmd.ErrOrStderr())

			if err := points.Save(outPath); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Summary(cfg.Output.Verbose))
			fmt.Fprintf(cmd.OutOrStdout(), "Annotated markups saved to: %s\n", outPath)
			zap.L().Info("classify: done",
				zap.String("points", pointsPath),
				zap.String("out", outPath),
				zap.Duration("elapsed", time.Since(start)),
			)

			return runErr
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&pointsPath, "points", "", "markups file (.fcsv) with the contacts")
	cmd.Flags().StringVar(&outPath, "out", "", "output markups file (default: <points>_zones.fcsv)")
	_ = cmd.MarkFlagRequired("points")

	return cmd
}

func defaultOutPath(pointsPath string) string {
	ext := filepath.Ext(pointsPath)
	return strings.TrimSuffix(pointsPath, ext) + "_zones" + ext
}
