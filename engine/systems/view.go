package systems

import (
	"fmt"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/globe"
	"github.com/spaghettifunk/terra/engine/renderer/components"
)

type viewLookup struct {
	view           *components.BasicView
	referenceCount uint16
}

/** @brief The view system configuration. */
type ViewSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of named views that can be managed by
	 * the system. The default view does not count.
	 */
	MaxViewCount uint16
}

// ViewSystem hands out named views bound to the current globe.
type ViewSystem struct {
	Config *ViewSystemConfig
	globe  globe.Globe
	lookup map[string]*viewLookup
	// A default, non-registered view that always exists as a fallback.
	DefaultView *components.BasicView
}

/**
 * @brief Initializes the view system.
 *
 * @param config The configuration for this system.
 * @param g The globe every view is bound to.
 * @return An error when the configuration is invalid.
 */
func NewViewSystem(config *ViewSystemConfig, g globe.Globe) (*ViewSystem, error) {
	if config.MaxViewCount == 0 {
		err := fmt.Errorf("func NewViewSystem - config.MaxViewCount must be > 0")
		core.LogError("%v", err)
		return nil, err
	}
	if g == nil {
		return nil, core.NewPreconditionError("NewViewSystem", core.ErrMissingGlobe, "")
	}
	return &ViewSystem{
		Config:      config,
		globe:       g,
		lookup:      make(map[string]*viewLookup, config.MaxViewCount),
		DefaultView: components.NewBasicView(g),
	}, nil
}

/**
 * @brief Shuts down the view system.
 */
func (vs *ViewSystem) Shutdown() error {
	for name := range vs.lookup {
		delete(vs.lookup, name)
	}
	return nil
}

/**
 * @brief Acquires a view by name.
 * If one is not found, a new one is created and returned.
 * Internal reference counter is incremented.
 *
 * @param name The name of the view to acquire.
 * @return The view, or an error when no slot is left.
 */
func (vs *ViewSystem) Acquire(name string) (*components.BasicView, error) {
	if name == components.DEFAULT_VIEW_NAME {
		return vs.DefaultView, nil
	}
	entry, ok := vs.lookup[name]
	if !ok {
		if len(vs.lookup) >= int(vs.Config.MaxViewCount) {
			err := fmt.Errorf("func ViewSystem.Acquire failed to acquire new slot for '%s'. Adjust view system config to allow more", name)
			core.LogError("%v", err)
			return nil, err
		}
		core.LogDebug("Creating new view named '%s'...", name)
		entry = &viewLookup{view: components.NewBasicView(vs.globe)}
		vs.lookup[name] = entry
	}
	entry.referenceCount++
	return entry.view, nil
}

/**
 * @brief Releases a view with the given name. Internal reference
 * counter is decremented. If this reaches 0, the view is reset
 * and the name is free to be used by a new view.
 *
 * @param name The name of the view to release.
 */
func (vs *ViewSystem) Release(name string) {
	if name == components.DEFAULT_VIEW_NAME {
		core.LogDebug("Cannot release default view. Nothing was done.")
		return
	}
	entry, ok := vs.lookup[name]
	if !ok {
		core.LogWarn("ViewSystem.Release failed lookup for '%s'. Nothing was done.", name)
		return
	}
	entry.referenceCount--
	if entry.referenceCount < 1 {
		entry.view.Reset()
		delete(vs.lookup, name)
	}
}

// ReferenceCount returns how many holders a named view has, 0 when unknown.
func (vs *ViewSystem) ReferenceCount(name string) int {
	if entry, ok := vs.lookup[name]; ok {
		return int(entry.referenceCount)
	}
	return 0
}

/**
 * @brief Gets the default view.
 *
 * @return The default view.
 */
func (vs *ViewSystem) GetDefault() *components.BasicView {
	return vs.DefaultView
}

// SetGlobe rebinds every view to g. Only call it between frames.
func (vs *ViewSystem) SetGlobe(g globe.Globe) {
	vs.globe = g
	vs.DefaultView.SetGlobe(g)
	for _, entry := range vs.lookup {
		entry.view.SetGlobe(g)
	}
}
