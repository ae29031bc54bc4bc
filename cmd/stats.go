package cmd

import (
	"fmt"
	"io"

	"github.com/notargets/meshstore/incidence"
	"github.com/spf13/cobra"
)

// StatsCmd reports element counts of a mesh file
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Read a mesh and report element counts per kind and per segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		gridFile, err := cmd.Flags().GetString("gridFile")
		if err != nil {
			return err
		}
		s, err := openMesh(gridFile)
		if err != nil {
			return err
		}
		if s.params.Title != "" {
			s.params.Print()
		}
		return s.writeStats(cmd.OutOrStdout())
	},
}

func (s *session) writeStats(w io.Writer) error {
	mesh := s.sm.Mesh()
	fmt.Fprintf(w, "format %s: %d vertices, %d cells, %d degenerate\n",
		s.summary.Format, s.summary.Vertices, s.summary.Cells, s.summary.Degenerate)
	for _, k := range mesh.Kinds() {
		if n := mesh.Len(k); n > 0 {
			fmt.Fprintf(w, "%-14s %d\n", k, n)
		}
	}

	if kinds := cellKinds(mesh); len(kinds) > 0 && kinds[0].Dimension() > 0 {
		inc, err := incidence.CellFacets(mesh, kinds...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "boundary facets %d\n", len(inc.BoundaryFacets()))
	}

	for _, seg := range s.sm.Segments() {
		fmt.Fprintf(w, "segment %d %q:", seg.ID(), seg.Name())
		for _, k := range mesh.Kinds() {
			if n := seg.Len(k); n > 0 {
				fmt.Fprintf(w, " %s=%d", k, n)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(StatsCmd)
	StatsCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gambit (.neu) or SU2 (.su2) format")
}
