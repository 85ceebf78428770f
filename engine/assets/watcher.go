package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
	"github.com/spaghettifunk/terra/engine/systems"
)

var ErrWatcherClosed = errors.New("config watcher already closed")

// ConfigWatcher reloads a configuration file when it changes on disk. The
// file is parsed on the task service and the newest valid configuration is
// kept in Updates until the engine picks it up between frames.
type ConfigWatcher struct {
	path  string
	tasks *systems.TaskService

	fsnotify *fsnotify.Watcher
	updates  chan *Config
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup

	mutex    sync.Mutex
	isClosed bool
}

// NewConfigWatcher starts watching path. The parent directory is watched
// so editors that replace the file on save are seen too.
func NewConfigWatcher(path string, tasks *systems.TaskService) (*ConfigWatcher, error) {
	if tasks == nil {
		return nil, core.NewPreconditionError("NewConfigWatcher", core.ErrNilArgument, "task service")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:     abs,
		tasks:    tasks,
		fsnotify: fsWatch,
		// Only the latest configuration matters.
		updates: make(chan *Config, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.start()

	core.LogInfo("Watching configuration file '%s'.", abs)
	return cw, nil
}

// Updates delivers reloaded configurations.
func (cw *ConfigWatcher) Updates() <-chan *Config {
	return cw.updates
}

// Errors delivers reload failures. Older failures are dropped when nobody
// reads them.
func (cw *ConfigWatcher) Errors() <-chan error {
	return cw.errors
}

func (cw *ConfigWatcher) Path() string {
	return cw.path
}

func (cw *ConfigWatcher) start() {
	defer cw.wg.Done()
	for {
		select {
		case e, ok := <-cw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cw.reload()
			}

		case err, ok := <-cw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%v", err)
			cw.report(err)

		case <-cw.done:
			return
		}
	}
}

// reload parses the file on the task service.
func (cw *ConfigWatcher) reload() {
	err := cw.tasks.TrySubmit(metadata.Task{
		Name:   "config-reload",
		Params: cw.path,
		EntryPoint: func(params interface{}) (interface{}, error) {
			return LoadConfig(params.(string))
		},
		OnSuccess: func(result interface{}) {
			core.LogInfo("Configuration '%s' reloaded.", cw.path)
			cw.deliver(result.(*Config))
		},
		OnFailure: cw.report,
	})
	if err != nil {
		core.LogWarn("Configuration reload of '%s' not scheduled: %v", cw.path, err)
	}
}

func (cw *ConfigWatcher) deliver(cfg *Config) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	if cw.isClosed {
		return
	}
	select {
	case <-cw.updates:
	default:
	}
	cw.updates <- cfg
}

func (cw *ConfigWatcher) report(err error) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	if cw.isClosed {
		return
	}
	select {
	case <-cw.errors:
	default:
	}
	cw.errors <- err
}

// Close stops watching and closes both channels. Reloads still running on
// the task service are discarded.
func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.isClosed {
		cw.mutex.Unlock()
		return ErrWatcherClosed
	}
	cw.isClosed = true
	close(cw.done)
	cw.mutex.Unlock()

	cw.wg.Wait()
	err := cw.fsnotify.Close()

	cw.mutex.Lock()
	close(cw.updates)
	close(cw.errors)
	cw.mutex.Unlock()
	return err
}
