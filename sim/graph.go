package sim

import "fmt"

// Graph is an adjacency-list view of a Topology, built once per run.
// Node and edge order follows the topology's declaration order, which keeps
// fan-out and round-robin assignment deterministic.
type Graph struct {
	nodes    map[string]*SimNode
	order    []string
	outgoing map[string][]*SimEdge
	incoming map[string][]*SimEdge
	entries  []string
}

// BuildGraph indexes nodes by id and builds outgoing/incoming adjacency in
// one pass over the edge list. It fails if an edge references an unknown
// node, a node id is duplicated, or no node is free of incoming edges.
func BuildGraph(topo Topology) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*SimNode, len(topo.Nodes)),
		order:    make([]string, 0, len(topo.Nodes)),
		outgoing: make(map[string][]*SimEdge, len(topo.Nodes)),
		incoming: make(map[string][]*SimEdge, len(topo.Nodes)),
	}
	for i := range topo.Nodes {
		n := &topo.Nodes[i]
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrInvalidConfig, n.ID)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for i := range topo.Edges {
		e := &topo.Edges[i]
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("%w: edge %q source %q", ErrUnknownNode, e.ID, e.Source)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("%w: edge %q target %q", ErrUnknownNode, e.ID, e.Target)
		}
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
	}
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			g.entries = append(g.entries, id)
		}
	}
	if len(g.entries) == 0 {
		return nil, ErrNoEntryNodes
	}
	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*SimNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in declaration order.
func (g *Graph) NodeIDs() []string {
	return g.order
}

// EntryNodes returns the ids of nodes with no incoming edges.
func (g *Graph) EntryNodes() []string {
	return g.entries
}

// Outgoing returns the edges leaving id in declaration order.
func (g *Graph) Outgoing(id string) []*SimEdge {
	return g.outgoing[id]
}

// Incoming returns the edges entering id in declaration order.
func (g *Graph) Incoming(id string) []*SimEdge {
	return g.incoming[id]
}

// OutgoingTargets returns the target ids of the edges leaving id.
func (g *Graph) OutgoingTargets(id string) []string {
	edges := g.outgoing[id]
	targets := make([]string, len(edges))
	for i, e := range edges {
		targets[i] = e.Target
	}
	return targets
}
