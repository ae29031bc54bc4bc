package partition

import (
	"errors"
	"fmt"

	metis "github.com/notargets/go-metis"
	"github.com/notargets/meshstore/incidence"
	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

var ErrNoCells = errors.New("no cells to partition")

// Config holds configuration for cell partitioning
type Config struct {
	NumPartitions    int32
	ImbalanceFactor  float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights   bool
	UseVertexWeights bool
	Objective        string // "cut" or "vol"
}

// DefaultConfig returns default partitioning configuration
func DefaultConfig(nparts int32) *Config {
	return &Config{
		NumPartitions:    nparts,
		ImbalanceFactor:  1.05,
		UseEdgeWeights:   true,
		UseVertexWeights: true,
		Objective:        "vol", // minimize communication volume
	}
}

// Partitioner splits the cells of a mesh source into balanced parts
type Partitioner struct {
	src    store.Source
	config *Config
	log    *logrus.Logger

	// Cost models
	computeCostModel func(kind topology.Kind) int32
	commCostModel    func(facetVertices int) int32
}

// Result assigns every cell to a part
type Result struct {
	Cells  []store.Handle
	Parts  []int
	ObjVal int32
	Stats  []Stats
}

func NewPartitioner(src store.Source, config *Config, log *logrus.Logger) *Partitioner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Partitioner{
		src:    src,
		config: config,
		log:    log,
	}
	p.computeCostModel = func(kind topology.Kind) int32 {
		// relative expense follows vertex count
		switch kind {
		case topology.Tetrahedron, topology.Triangle:
			return 1
		case topology.Quadrilateral:
			return 2
		case topology.Pyramid:
			return 5
		case topology.Prism:
			return 6
		case topology.Hexahedron:
			return 8
		default:
			return 1
		}
	}
	p.commCostModel = func(facetVertices int) int32 {
		return int32(max(facetVertices, 1))
	}
	return p
}

// Partition assigns each cell of the given kinds to one of NumPartitions parts
func (p *Partitioner) Partition(cellKinds ...topology.Kind) (*Result, error) {
	g, err := incidence.DualGraph(p.src, cellKinds...)
	if err != nil {
		return nil, err
	}
	nc := len(g.Cells)
	if nc == 0 {
		return nil, ErrNoCells
	}
	p.log.WithFields(logrus.Fields{
		"cells": nc,
		"parts": p.config.NumPartitions,
	}).Info("partitioning cells")

	res := &Result{Cells: g.Cells, Parts: make([]int, nc)}
	if p.config.NumPartitions <= 1 {
		res.Stats = p.analyze(g, res)
		return res, nil
	}

	vwgt, adjwgt, err := p.weights(g)
	if err != nil {
		return nil, err
	}

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if p.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{p.config.ImbalanceFactor}

	var vwgtPtr, adjwgtPtr []int32
	if p.config.UseVertexWeights {
		vwgtPtr = vwgt
	}
	if p.config.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}
	part, objval, err := metis.PartGraphKwayWeighted(
		g.Xadj, g.Adjncy, vwgtPtr, adjwgtPtr,
		p.config.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	for i := range res.Parts {
		res.Parts[i] = int(part[i])
	}
	res.ObjVal = objval
	res.Stats = p.analyze(g, res)
	return res, nil
}

// weights returns the per-cell compute cost and, per adjacency entry, the cost of the
// facets the two cells share
func (p *Partitioner) weights(g *incidence.Graph) (vwgt, adjwgt []int32, err error) {
	els := make([]*store.Element, len(g.Cells))
	for i, h := range g.Cells {
		if els[i], err = p.src.Dereference(h); err != nil {
			return nil, nil, err
		}
	}
	vwgt = make([]int32, len(g.Cells))
	adjwgt = make([]int32, len(g.Adjncy))
	for i, el := range els {
		vwgt[i] = p.computeCostModel(el.Kind())
		for k := g.Xadj[i]; k < g.Xadj[i+1]; k++ {
			var cost int32
			for _, f := range sharedFacets(el, els[g.Adjncy[k]]) {
				cost += p.commCostModel(facetVertexCount(p.src, f))
			}
			adjwgt[k] = max(cost, 1)
		}
	}
	return
}

func sharedFacets(a, b *store.Element) (shared []store.Handle) {
	for _, fa := range a.Facets() {
		for _, fb := range b.Facets() {
			if fa == fb {
				shared = append(shared, fa)
			}
		}
	}
	return
}

func facetVertexCount(src store.Source, f store.Handle) int {
	el, err := src.Dereference(f)
	if err != nil {
		return 0
	}
	if el.Kind() == topology.Vertex {
		return 1
	}
	return len(el.Vertices())
}

// Apply creates one segment per part, named with the given prefix, and adds each cell to
// the segment of its part
func (res *Result) Apply(sm *segmentation.Segmentation, prefix string) ([]*segmentation.Segment, error) {
	nparts := 0
	for _, p := range res.Parts {
		nparts = max(nparts, p+1)
	}
	segs := make([]*segmentation.Segment, nparts)
	for i := range segs {
		segs[i] = sm.MakeNamed(fmt.Sprintf("%s%d", prefix, i))
	}
	for i, h := range res.Cells {
		if err := sm.Add(segs[res.Parts[i]], h); err != nil {
			return nil, err
		}
	}
	return segs, nil
}
