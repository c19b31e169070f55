package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/spaghettifunk/skyview/engine/assets/loaders"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// LoadRequest describes one asynchronous asset load.
type LoadRequest struct {
	ID     uuid.UUID
	Name   string
	Path   string
	Type   metadata.ResourceType
	Params map[string]string

	// Placement applied when the loaded node joins the scene.
	Scale    float32
	Position math.Vec3
	// ChecksCompletion marks the asset whose arrival may end the loading phase.
	ChecksCompletion bool
}

// LoadResult is posted once per request, on success or failure.
type LoadResult struct {
	Request  LoadRequest
	Resource *metadata.Resource
	Err      error
}

// JobRunner runs tasks off the calling goroutine.
type JobRunner interface {
	Submit(jt metadata.JobTask)
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	jobs     JobRunner
	results  chan LoadResult
	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(jobs JobRunner, resultBuffer int) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		jobs:     jobs,
		fsnotify: fsWatch,
		results:  make(chan LoadResult, resultBuffer),
		done:     make(chan struct{}),
	}, nil
}

// Initialize indexes and watches assetsDir. Remote assets bypass the index.
func (am *AssetManager) Initialize(assetsDir string, modelLoader *loaders.ModelLoader) error {
	go am.start()

	if assetsDir != "" {
		if err := am.addRecursive(assetsDir); err != nil {
			return err
		}
	}

	// Register loaders
	am.RegisterLoader(metadata.ResourceTypeModel, modelLoader)
	am.RegisterLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})

	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

func (am *AssetManager) loaderFor(path string, assetType metadata.ResourceType) (Loader, string, error) {
	resolved := path
	if !isRemote(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		resolved = abs

		am.mutex.Lock()
		asset, exists := am.assets[abs]
		if exists {
			asset.LastLoaded = time.Now()
			am.assets[abs] = asset
		}
		am.mutex.Unlock()
		if !exists {
			if _, err := os.Stat(abs); err != nil {
				return nil, "", fmt.Errorf("%w: %s: %w", core.ErrAssetNotFound, path, err)
			}
		}
	}

	am.mutex.RLock()
	loader, loaderExists := am.loaders[assetType]
	am.mutex.RUnlock()
	if !loaderExists {
		return nil, "", fmt.Errorf("%w: no loader registered for asset type %s", core.ErrUnsupportedAsset, assetType)
	}
	return loader, resolved, nil
}

// LoadAsset loads an asset synchronously using the appropriate loader.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params map[string]string) (*metadata.Resource, error) {
	loader, resolved, err := am.loaderFor(path, resourceType)
	if err != nil {
		return nil, err
	}
	return loader.Load(resolved, resourceType, params)
}

// LoadAsync queues req on the job runner. Exactly one LoadResult is posted
// to Results for every call, including requests that fail up front.
func (am *AssetManager) LoadAsync(req LoadRequest) uuid.UUID {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	params := map[string]string{"name": req.Name}
	for k, v := range req.Params {
		params[k] = v
	}

	am.jobs.Submit(metadata.JobTask{
		Name:        req.Name,
		JobType:     metadata.JOB_TYPE_RESOURCE_LOAD,
		InputParams: req,
		OnStart: func(interface{}) (interface{}, error) {
			return am.LoadAsset(req.Path, req.Type, params)
		},
		OnComplete: func(result interface{}) {
			am.post(LoadResult{Request: req, Resource: result.(*metadata.Resource)})
		},
		OnFailure: func(err error) {
			am.post(LoadResult{Request: req, Err: err})
		},
	})
	return req.ID
}

func (am *AssetManager) post(r LoadResult) {
	select {
	case am.results <- r:
	case <-am.done:
	}
}

// Results delivers completed loads in completion order.
func (am *AssetManager) Results() <-chan LoadResult {
	return am.results
}

// Drain hands every result available right now to fn without blocking.
// Returns the number of results handled.
func (am *AssetManager) Drain(fn func(LoadResult)) int {
	n := 0
	for {
		select {
		case r := <-am.results:
			fn(r)
			n++
		default:
			return n
		}
	}
}

func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[abs]
	return a, ok
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource, assetType metadata.ResourceType) error {
	am.mutex.RLock()
	loader, ok := am.loaders[assetType]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnsupportedAsset, assetType)
	}
	return loader.Unload(asset)
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

func (am *AssetManager) start() {
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("unable to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if _, known := am.Asset(e.Name); known {
					core.LogInfo("Asset %s changed on disk; restart to pick it up.", e.Name)
				}
				am.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[abs] = AssetInfo{
		Path: abs,
		Type: assetType,
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, abs)
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return metadata.ResourceTypeModel
	case ".fnt":
		return metadata.ResourceTypeBitmapFont
	default:
		return metadata.ResourceTypeNone
	}
}
