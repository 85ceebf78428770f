package metadata

import "image"

// Layer is a unit of content drawn on top of the terrain. Render and Pick
// are called once per frame; a failing layer does not stop the others.
type Layer interface {
	Name() string
	IsEnabled() bool
	Render(dc *DrawContext) error
	// Pick draws the layer's pickable objects in unique colours into the
	// pick target and registers each one as a candidate.
	Pick(dc *DrawContext, point image.Point) error
}

// LayerList keeps layers in draw order.
type LayerList struct {
	layers []Layer
}

func NewLayerList(layers ...Layer) *LayerList {
	return &LayerList{layers: append([]Layer(nil), layers...)}
}

func (ll *LayerList) Add(layer Layer) {
	if layer == nil {
		return
	}
	ll.layers = append(ll.layers, layer)
}

// Remove drops the first layer with the given name.
func (ll *LayerList) Remove(name string) bool {
	for i, l := range ll.layers {
		if l.Name() == name {
			ll.layers = append(ll.layers[:i], ll.layers[i+1:]...)
			return true
		}
	}
	return false
}

func (ll *LayerList) Find(name string) Layer {
	for _, l := range ll.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

func (ll *LayerList) Len() int {
	if ll == nil {
		return 0
	}
	return len(ll.layers)
}

// Layers returns a copy of the list so callers cannot reorder it mid-frame.
func (ll *LayerList) Layers() []Layer {
	if ll == nil {
		return nil
	}
	return append([]Layer(nil), ll.layers...)
}
