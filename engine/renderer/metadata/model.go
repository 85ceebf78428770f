package metadata

import "github.com/spaghettifunk/terra/engine/globe"

// Model is what a frame renders: a globe, the tessellator that builds its
// surface and the content layers on top.
type Model struct {
	Globe       globe.Globe
	Tessellator Tessellator
	Layers      *LayerList
}

func NewModel(g globe.Globe, tessellator Tessellator, layers *LayerList) *Model {
	if layers == nil {
		layers = NewLayerList()
	}
	return &Model{Globe: g, Tessellator: tessellator, Layers: layers}
}
