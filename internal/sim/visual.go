package sim

import "agora/internal/society"

// NodeStyle carries the visual annotations for one agent: red/blue by
// depression, square/circle by minority status, half opacity when concealed.
type NodeStyle struct {
	ID      int     `json:"id"`
	Color   string  `json:"color"`
	Shape   string  `json:"shape"`
	Opacity float64 `json:"opacity"`
}

// Plotter consumes node annotations and edges for display. Write-only; no
// feedback into the simulation.
type Plotter interface {
	PlotNetwork(time int, nodes []NodeStyle, edges []society.Edge) error
}

// VisualAttributes derives the display annotations for the whole population.
func (n *Network) VisualAttributes() []NodeStyle {
	agents := n.registry.Agents()
	out := make([]NodeStyle, 0, len(agents))
	for id, agent := range agents {
		style := NodeStyle{ID: id, Color: "red", Shape: "o", Opacity: 1.0}
		if !agent.IsDepressed() {
			style.Color = "blue"
		}
		if agent.IsMinority() {
			style.Shape = "s"
		}
		if agent.IsConcealed() {
			style.Opacity = 0.5
		}
		out = append(out, style)
	}
	return out
}

// Visualize hands the current population state to the plotter.
func (n *Network) Visualize(p Plotter, time int) error {
	return p.PlotNetwork(time, n.VisualAttributes(), n.registry.Graph().Edges())
}
