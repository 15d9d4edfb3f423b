package remote

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// idGenerator hands out time-ordered ids, so ordering rows by id keeps
// creation order.
type idGenerator struct {
	node *snowflake.Node
}

func newIDGenerator(nodeID int64) (*idGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &idGenerator{node: node}, nil
}

func (g *idGenerator) next() string {
	return g.node.Generate().String()
}
