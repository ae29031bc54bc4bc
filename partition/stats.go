package partition

import (
	"math"

	"github.com/notargets/meshstore/incidence"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

// Stats holds statistics for a single part
type Stats struct {
	ID           int
	NumElements  int
	ComputeLoad  int64
	ElementKinds map[topology.Kind]int
	NumNeighbors map[int]int // neighbor part -> shared facets
}

// analyze computes and reports partition quality metrics
func (p *Partitioner) analyze(g *incidence.Graph, res *Result) []Stats {
	nparts := int(max(p.config.NumPartitions, 1))
	partStats := make([]Stats, nparts)
	for i := range partStats {
		partStats[i].ID = i
		partStats[i].ElementKinds = make(map[topology.Kind]int)
		partStats[i].NumNeighbors = make(map[int]int)
	}

	for i, h := range res.Cells {
		stats := &partStats[res.Parts[i]]
		stats.NumElements++
		stats.ElementKinds[h.Kind]++
		stats.ComputeLoad += int64(p.computeCostModel(h.Kind))
	}

	var (
		cutEdges   int
		commVolume int64
		interfaces = make(map[[2]int]int)
	)
	for i := range res.Cells {
		for k := g.Xadj[i]; k < g.Xadj[i+1]; k++ {
			j := int(g.Adjncy[k])
			pi, pj := res.Parts[i], res.Parts[j]
			// count each pair once
			if j <= i || pi == pj {
				continue
			}
			cutEdges++
			commVolume += int64(g.Shared[k])
			if pi > pj {
				pi, pj = pj, pi
			}
			interfaces[[2]int{pi, pj}] += int(g.Shared[k])
			partStats[pi].NumNeighbors[pj] += int(g.Shared[k])
			partStats[pj].NumNeighbors[pi] += int(g.Shared[k])
		}
	}

	var (
		avgLoad float64
		maxLoad int64
		minLoad int64 = math.MaxInt64
	)
	for _, stats := range partStats {
		avgLoad += float64(stats.ComputeLoad)
		maxLoad = max(maxLoad, stats.ComputeLoad)
		minLoad = min(minLoad, stats.ComputeLoad)
	}
	avgLoad /= float64(nparts)
	imbalance := 0.
	if avgLoad > 0 {
		imbalance = float64(maxLoad)/avgLoad - 1.0
	}

	p.log.WithFields(logrus.Fields{
		"objective":  res.ObjVal,
		"cutEdges":   cutEdges,
		"commVolume": commVolume,
		"imbalance":  imbalance,
		"minLoad":    minLoad,
		"maxLoad":    maxLoad,
	}).Info("partition analysis")
	for _, stats := range partStats {
		p.log.WithFields(logrus.Fields{
			"part":      stats.ID,
			"elements":  stats.NumElements,
			"load":      stats.ComputeLoad,
			"neighbors": len(stats.NumNeighbors),
		}).Debug("partition")
	}
	for pair, n := range interfaces {
		p.log.Debugf("partition %d <-> %d: %d facets", pair[0], pair[1], n)
	}
	return partStats
}

// Imbalance is the ratio of the heaviest part's load to the mean load, minus one
func Imbalance(stats []Stats) float64 {
	if len(stats) == 0 {
		return 0
	}
	var (
		total   int64
		maxLoad int64
	)
	for _, s := range stats {
		total += s.ComputeLoad
		maxLoad = max(maxLoad, s.ComputeLoad)
	}
	if total == 0 {
		return 0
	}
	return float64(maxLoad)/(float64(total)/float64(len(stats))) - 1
}
