package stats

import (
	"fmt"
	"os"
	"path/filepath"

	"agora/internal/sim"
	"agora/internal/society"
)

// NetworkFrame is one plotted snapshot of the population graph.
type NetworkFrame struct {
	Time  int             `json:"time"`
	Nodes []sim.NodeStyle `json:"nodes"`
	Edges []society.Edge  `json:"edges"`
}

// FilePlotter writes network frames as JSON files under a run directory. It
// satisfies sim.Plotter.
type FilePlotter struct {
	dir string
}

func NewFilePlotter(runDir string) (*FilePlotter, error) {
	dir := filepath.Join(runDir, "frames")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FilePlotter{dir: dir}, nil
}

func (p *FilePlotter) PlotNetwork(time int, nodes []sim.NodeStyle, edges []society.Edge) error {
	frame := NetworkFrame{Time: time, Nodes: nodes, Edges: edges}
	name := fmt.Sprintf("network_%06d.json", time)
	return writeJSON(filepath.Join(p.dir, name), frame)
}
