package zammi

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound reports a missing image, video or configuration file.
	// It is fatal to the scene that needs the asset.
	ErrAssetNotFound = errors.New("zammi: asset not found")

	// ErrDeviceUnavailable reports a camera that could not be opened or that
	// failed too many consecutive reads. Callers degrade to a placeholder
	// frame instead of aborting.
	ErrDeviceUnavailable = errors.New("zammi: device unavailable")

	// ErrPoseNotFound reports a pose name missing from the store.
	ErrPoseNotFound = errors.New("zammi: pose not found")

	// ErrUnknownChallenge reports a challenge kind with no registered
	// constructor.
	ErrUnknownChallenge = errors.New("zammi: unknown challenge kind")
)

// AssetError describes a missing asset. It matches ErrAssetNotFound with
// errors.Is.
type AssetError struct {
	Kind string // "image", "video", "poses", "story", "model", ...
	Path string
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("zammi: %s not found: %s", e.Kind, e.Path)
}

// Is makes errors.Is(err, ErrAssetNotFound) succeed for every AssetError.
func (e *AssetError) Is(target error) bool {
	return target == ErrAssetNotFound
}

// MissingAsset returns an *AssetError for the given kind and path.
func MissingAsset(kind, path string) error {
	return &AssetError{Kind: kind, Path: path}
}
