package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/meshstore/partition"
	"github.com/notargets/meshstore/segmentation"
	"github.com/notargets/meshstore/store"
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

// Parameters obtained from the YAML input file
type Parameters struct {
	Title        string              `yaml:"Title"`
	Kinds        []string            `yaml:"Kinds"` // empty means every kind
	PruneOrphans bool                `yaml:"PruneOrphans"`
	LogLevel     string              `yaml:"LogLevel"`
	Partition    PartitionParameters `yaml:"Partition"`
}

type PartitionParameters struct {
	NumPartitions    int32   `yaml:"NumPartitions"`
	ImbalanceFactor  float32 `yaml:"ImbalanceFactor"`
	Objective        string  `yaml:"Objective"`
	UseEdgeWeights   *bool   `yaml:"UseEdgeWeights"`
	UseVertexWeights *bool   `yaml:"UseVertexWeights"`
	SegmentPrefix    string  `yaml:"SegmentPrefix"`
}

func (ip *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// ReadFile parses the named YAML file; an empty name yields zero Parameters
func ReadFile(filename string) (*Parameters, error) {
	ip := &Parameters{}
	if filename == "" {
		return ip, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ip, nil
}

func (ip *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	if len(ip.Kinds) == 0 {
		fmt.Printf("[all]\t\t\t= Kinds\n")
	} else {
		fmt.Printf("[%s]\t= Kinds\n", strings.Join(ip.Kinds, ","))
	}
	fmt.Printf("[%v]\t\t\t= Prune Orphans\n", ip.PruneOrphans)
	if ip.Partition.NumPartitions > 0 {
		fmt.Printf("[%d]\t\t\t\t= Partitions\n", ip.Partition.NumPartitions)
		fmt.Printf("[%s]\t\t\t= Objective\n", ip.Partition.Objective)
	}
}

// Level resolves LogLevel, defaulting to info
func (ip *Parameters) Level() (logrus.Level, error) {
	if ip.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(ip.LogLevel)
}

func (ip *Parameters) StoreConfig(log *logrus.Logger) (store.Config, error) {
	cfg := store.Config{Logger: log}
	for _, name := range ip.Kinds {
		k, err := topology.ParseKind(name)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", store.ErrUnknownKind, err)
		}
		cfg.Kinds = append(cfg.Kinds, k)
	}
	return cfg, nil
}

func (ip *Parameters) SegmentationConfig(log *logrus.Logger) segmentation.Config {
	return segmentation.Config{PruneOrphans: ip.PruneOrphans, Logger: log}
}

// PartitionConfig fills unset fields from partition.DefaultConfig. nparts overrides the
// file value when positive.
func (ip *Parameters) PartitionConfig(nparts int32) (*partition.Config, error) {
	pp := ip.Partition
	if nparts <= 0 {
		nparts = pp.NumPartitions
	}
	if nparts <= 0 {
		return nil, fmt.Errorf("number of partitions must be positive, have %d", nparts)
	}
	cfg := partition.DefaultConfig(nparts)
	if pp.ImbalanceFactor != 0 {
		if pp.ImbalanceFactor < 1 {
			return nil, fmt.Errorf("imbalance factor %v is below 1", pp.ImbalanceFactor)
		}
		cfg.ImbalanceFactor = pp.ImbalanceFactor
	}
	switch pp.Objective {
	case "":
	case "cut", "vol":
		cfg.Objective = pp.Objective
	default:
		return nil, fmt.Errorf("unknown partition objective %q", pp.Objective)
	}
	if pp.UseEdgeWeights != nil {
		cfg.UseEdgeWeights = *pp.UseEdgeWeights
	}
	if pp.UseVertexWeights != nil {
		cfg.UseVertexWeights = *pp.UseVertexWeights
	}
	return cfg, nil
}

// SegmentPrefix names partition segments, "part" when unset
func (ip *Parameters) SegmentPrefix() string {
	if ip.Partition.SegmentPrefix == "" {
		return "part"
	}
	return ip.Partition.SegmentPrefix
}
