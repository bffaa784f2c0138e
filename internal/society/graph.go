package society

import (
	"errors"
	"fmt"
	"sort"
)

var ErrEdgeNotFound = errors.New("edge not found")

// Edge is an undirected pair of agent indices.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Graph is an undirected contact graph over stable agent indices. It holds
// only structure; agent attributes live behind the registry.
type Graph struct {
	adj map[int]map[int]struct{}
}

func NewGraph() *Graph {
	return &Graph{adj: make(map[int]map[int]struct{})}
}

func (g *Graph) AddNode(id int) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[int]struct{})
	}
}

func (g *Graph) AddEdge(a, b int) {
	g.AddNode(a)
	g.AddNode(b)
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// AddEdges inserts all given undirected pairs. Re-adding an existing pair is
// a no-op.
func (g *Graph) AddEdges(pairs []Edge) {
	for _, pair := range pairs {
		g.AddEdge(pair.A, pair.B)
	}
}

func (g *Graph) RemoveEdge(a, b int) error {
	neighbors, ok := g.adj[a]
	if !ok {
		return fmt.Errorf("%w: %d-%d", ErrEdgeNotFound, a, b)
	}
	if _, ok := neighbors[b]; !ok {
		return fmt.Errorf("%w: %d-%d", ErrEdgeNotFound, a, b)
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	return nil
}

func (g *Graph) HasEdge(a, b int) bool {
	neighbors, ok := g.adj[a]
	if !ok {
		return false
	}
	_, ok = neighbors[b]
	return ok
}

// Neighbors returns the direct neighbors of id in ascending order.
func (g *Graph) Neighbors(id int) []int {
	neighbors, ok := g.adj[id]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(neighbors))
	for n := range neighbors {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

func (g *Graph) Nodes() []int {
	out := make([]int, 0, len(g.adj))
	for id := range g.adj {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0)
	for a, neighbors := range g.adj {
		for b := range neighbors {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A == out[j].A {
			return out[i].B < out[j].B
		}
		return out[i].A < out[j].A
	})
	return out
}
