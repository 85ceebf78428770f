package metadata

import (
	"image/color"
	"reflect"

	"github.com/spaghettifunk/terra/engine/globe"
)

// PickedObject records one object drawn into the pick target.
type PickedObject struct {
	ColorCode uint32
	Object    any
	IsTerrain bool
	OnTop     bool
	// Position is where the pick ray met the object, when known.
	Position *globe.Position
	// Layer is the name of the layer that drew it.
	Layer string
}

func NewPickedObject(colorCode uint32, object any) *PickedObject {
	return &PickedObject{ColorCode: colorCode, Object: object}
}

// ColorCode packs an opaque colour into the 24-bit code used by the pick
// target.
func ColorCode(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColorFromCode is the inverse of ColorCode.
func ColorFromCode(code uint32) color.RGBA {
	return color.RGBA{R: uint8(code >> 16), G: uint8(code >> 8), B: uint8(code), A: 0xff}
}

// PickedObjectList is the ordered result of one picking pass.
type PickedObjectList struct {
	objects []*PickedObject
}

func NewPickedObjectList() *PickedObjectList {
	return &PickedObjectList{}
}

func (pl *PickedObjectList) Add(po *PickedObject) {
	if po != nil {
		pl.objects = append(pl.objects, po)
	}
}

func (pl *PickedObjectList) Len() int {
	if pl == nil {
		return 0
	}
	return len(pl.objects)
}

func (pl *PickedObjectList) IsEmpty() bool {
	return pl.Len() == 0
}

func (pl *PickedObjectList) Clear() {
	pl.objects = pl.objects[:0]
}

// Objects returns the records in pick order.
func (pl *PickedObjectList) Objects() []*PickedObject {
	if pl == nil {
		return nil
	}
	return append([]*PickedObject(nil), pl.objects...)
}

func (pl *PickedObjectList) At(i int) *PickedObject {
	return pl.objects[i]
}

// TopPickedObject returns the first record marked on top, or nil.
func (pl *PickedObjectList) TopPickedObject() *PickedObject {
	if pl == nil {
		return nil
	}
	for _, po := range pl.objects {
		if po.OnTop {
			return po
		}
	}
	return nil
}

// FindByColorCode does a linear scan for the record drawn with code.
func (pl *PickedObjectList) FindByColorCode(code uint32) *PickedObject {
	for _, po := range pl.objects {
		if po.ColorCode == code {
			return po
		}
	}
	return nil
}

func (pl *PickedObjectList) HasNonTerrainObjects() bool {
	for _, po := range pl.objects {
		if !po.IsTerrain {
			return true
		}
	}
	return false
}

// HasOnTopNonTerrainObject reports whether a non-terrain object won the
// pick, which is what triggers a deep pick.
func (pl *PickedObjectList) HasOnTopNonTerrainObject() bool {
	for _, po := range pl.objects {
		if po.OnTop && !po.IsTerrain {
			return true
		}
	}
	return false
}

// ContainsObject reports whether a record references the same object.
func (pl *PickedObjectList) ContainsObject(object any) bool {
	for _, po := range pl.objects {
		if SameObject(po.Object, object) {
			return true
		}
	}
	return false
}

// Merge appends the non-terrain records of other whose objects are not
// already present and returns how many were added.
func (pl *PickedObjectList) Merge(other *PickedObjectList) int {
	if other == nil {
		return 0
	}
	added := 0
	for _, po := range other.Objects() {
		if po.IsTerrain || pl.ContainsObject(po.Object) {
			continue
		}
		pl.Add(po)
		added++
	}
	return added
}

// SameObject compares two picked objects by identity. Pointers, maps,
// functions and slices compare by address; other comparable values compare
// with ==. It never panics on incomparable values.
func SameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
