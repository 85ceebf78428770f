package core

import (
	"reflect"
	"sync"
)

// EventContext carries the payload of a fired event.
type EventContext struct {
	Data interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode uint16

const (
	// Stops the engine loop before the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// The viewport changed size.
	/* Context usage:
	 * image.Point size = data.Data.(image.Point)
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// A reloaded configuration was applied between two frames.
	/* Context usage:
	 * *assets.Config cfg = data.Data.(*assets.Config)
	 */
	EVENT_CODE_CONFIG_RELOADED SystemEventCode = 0x03

	// The pick point resolved to an object.
	/* Context usage:
	 * *metadata.PickedObject po = data.Data.(*metadata.PickedObject)
	 */
	EVENT_CODE_OBJECT_PICKED SystemEventCode = 0x04

	// A frame completed with isolated collaborator failures.
	/* Context usage:
	 * []core.Result failures = data.Data.([]core.Result)
	 */
	EVENT_CODE_FRAME_DEGRADED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously to registered listeners in
// registration order.
type EventBus struct {
	mutex      sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[SystemEventCode][]*registeredEvent)}
}

func sameCallback(a, b FnOnEvent) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

/**
 * @brief Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback to be invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (eb *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for _, e := range eb.registered[code] {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			LogWarn("event %d: listener already registered", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * @brief Unregister from listening for when events are sent with the provided code.
 * @returns true if a matching registration was removed; otherwise false.
 */
func (eb *EventBus) Unregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * @brief Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @param code The event code to fire.
 * @param sender The sender. Can be nil.
 * @param context The event data.
 * @returns true if handled, otherwise false.
 */
func (eb *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	// Listeners may register or fire from inside a callback.
	eb.mutex.RLock()
	events := append([]*registeredEvent(nil), eb.registered[code]...)
	eb.mutex.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (eb *EventBus) Shutdown() error {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.registered = make(map[SystemEventCode][]*registeredEvent)
	return nil
}
