package assets

import "github.com/spaghettifunk/skyview/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // `params` is loader specific, usually map[string]string
	Unload(*metadata.Resource) error
}
