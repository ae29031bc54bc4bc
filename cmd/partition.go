package cmd

import (
	"fmt"
	"io"

	"github.com/notargets/meshstore/partition"
	"github.com/spf13/cobra"
)

// PartitionCmd splits the cells of a mesh into balanced segments with METIS
var PartitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition the cells of a mesh and report the resulting segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		gridFile, err := cmd.Flags().GetString("gridFile")
		if err != nil {
			return err
		}
		nparts, _ := cmd.Flags().GetInt32("parts")
		s, err := openMesh(gridFile)
		if err != nil {
			return err
		}
		return s.partition(cmd.OutOrStdout(), nparts)
	},
}

func (s *session) partition(w io.Writer, nparts int32) error {
	pcfg, err := s.params.PartitionConfig(nparts)
	if err != nil {
		return err
	}
	kinds := cellKinds(s.sm.Mesh())
	if len(kinds) == 0 {
		return partition.ErrNoCells
	}
	res, err := partition.NewPartitioner(s.sm.Mesh(), pcfg, s.log).Partition(kinds...)
	if err != nil {
		return err
	}
	segs, err := res.Apply(s.sm, s.params.SegmentPrefix())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d cells in %d parts, objective %d, imbalance %.3f\n",
		len(res.Cells), len(segs), res.ObjVal, partition.Imbalance(res.Stats))
	for i, st := range res.Stats {
		name := ""
		if i < len(segs) && segs[i] != nil {
			name = segs[i].Name()
		}
		fmt.Fprintf(w, "%-10s cells=%d load=%d neighbors=%d\n",
			name, st.NumElements, st.ComputeLoad, len(st.NumNeighbors))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(PartitionCmd)
	PartitionCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gambit (.neu) or SU2 (.su2) format")
	PartitionCmd.Flags().Int32P("parts", "n", 0, "number of partitions, overrides the config file")
}
