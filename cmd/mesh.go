package cmd

import (
	"fmt"
	"os"

	"github.com/notargets/meshstore/config"
	"github.com/notargets/meshstore/readers"
	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// session is a mesh read from the command line grid file
type session struct {
	params  *config.Parameters
	log     *logrus.Logger
	sm      *segmentation.Segmentation
	summary *readers.Summary
}

func openMesh(gridFile string) (*session, error) {
	if len(gridFile) == 0 {
		return nil, fmt.Errorf("must supply a grid file (-F, --gridFile) in Gambit (.neu) or SU2 (.su2) format")
	}
	params, err := config.ReadFile(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := params.Level()
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	storeCfg, err := params.StoreConfig(log)
	if err != nil {
		return nil, err
	}
	mesh, err := store.NewCollection(storeCfg)
	if err != nil {
		return nil, err
	}
	sm, err := segmentation.New(mesh, params.SegmentationConfig(log))
	if err != nil {
		return nil, err
	}
	summary, err := readers.ReadMeshFile(gridFile, sm)
	if err != nil {
		return nil, err
	}
	return &session{params: params, log: log, sm: sm, summary: summary}, nil
}

// cellKinds are the populated kinds of the highest dimension in the mesh
func cellKinds(mesh *store.Collection) (kinds []topology.Kind) {
	top := -1
	for _, k := range mesh.Kinds() {
		if mesh.Len(k) == 0 {
			continue
		}
		switch d := k.Dimension(); {
		case d > top:
			top, kinds = d, []topology.Kind{k}
		case d == top:
			kinds = append(kinds, k)
		}
	}
	return
}
