package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainzone/pkg/classifier"
	"brainzone/pkg/coords"
)

func zonesCmd() *cobra.Command {
	var (
		flags runFlags
		pos   [3]float64
	)

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Print the zone breakdown around one RAS position",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			res, err := classifier.LoadResources(cfg)
			if err != nil {
				return err
			}
			vol, err := loadAtlas(cfg)
			if err != nil {
				return err
			}

			mapper := coords.NewMapper(vol.PhysicalToIndex())
			b, err := classifier.ClassifyPoint(pos, vol, mapper, res, cfg.Classification.SideLength)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "voxel %v, %d samples (%d white, %d gray)\n", mapper.ToIndex(pos), b.Total, b.White, b.Gray)
			for _, z := range b.Zones {
				fmt.Fprintf(out, "  %-30s %4d voxels %4d%%\n", z.Label, z.Count, z.Percent)
			}
			fmt.Fprintln(out, classifier.Format(b))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&pos[0], "x", 0, "R coordinate")
	cmd.Flags().Float64Var(&pos[1], "y", 0, "A coordinate")
	cmd.Flags().Float64Var(&pos[2], "z", 0, "S coordinate")

	return cmd
}
