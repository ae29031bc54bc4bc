package store

import (
	"github.com/notargets/meshstore/topology"
	"github.com/sirupsen/logrus"
)

// PostInsertFunc runs once for every newly created element of a kind, after its id and
// handle are final and before the insert returns
type PostInsertFunc func(c *Collection, el *Element)

// Config holds the options a Collection is built with
type Config struct {
	// Kinds participating in the mesh. The set is closed under boundary kinds on construction.
	Kinds []topology.Kind
	// Logger defaults to the logrus standard logger
	Logger *logrus.Logger
	// PostInsert hooks by kind
	PostInsert map[topology.Kind]PostInsertFunc
}

// DefaultConfig configures every kind
func DefaultConfig() Config {
	return Config{Kinds: topology.Kinds()}
}
