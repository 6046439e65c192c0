// Package terrainlibrary stores named terrain maps that rooms can save and load
package terrainlibrary

import (
	"context"
	"regexp"
	"time"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=terrainlibrarymock github.com/KirkDiggler/hexroom/internal/repositories/terrain_library Repository

// Entry describes a saved map without its payload
type Entry struct {
	Name     string
	HexCount int
	SavedAt  time.Time
}

// SaveInput contains a serialized terrain map to store under Name
type SaveInput struct {
	Name     string
	HexCount int
	// Data is the terrain JSON as produced by terrain.Store.Serialize
	Data []byte
}

// SaveOutput describes the stored map
type SaveOutput struct {
	Entry Entry
}

// LoadInput names the map to load
type LoadInput struct {
	Name string
}

// LoadOutput contains the terrain JSON
type LoadOutput struct {
	Entry Entry
	Data  []byte
}

// ListInput is empty; the library is small
type ListInput struct{}

// ListOutput contains every saved map, sorted by name
type ListOutput struct {
	Entries []Entry
}

// DeleteInput names the map to delete
type DeleteInput struct {
	Name string
}

// DeleteOutput reports whether a map was removed
type DeleteOutput struct {
	Deleted bool
}

// Repository defines terrain library storage
type Repository interface {
	// Save stores or overwrites a map
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Load returns a saved map or NotFound
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)

	// List returns every saved map
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Delete removes a map; deleting a missing map is not an error
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9 _.-]{1,64}$`)

// ValidateName checks a map name against the allowed character set
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return errors.InvalidArgumentf("invalid terrain name %q", name).WithMeta("name", name)
	}
	return nil
}

func validateSave(input *SaveInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}
	if err := ValidateName(input.Name); err != nil {
		return err
	}
	if len(input.Data) == 0 {
		return errors.InvalidArgument("terrain data is required")
	}
	return nil
}

func validateLoad(input *LoadInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}
	return ValidateName(input.Name)
}

func notFound(name string) error {
	return errors.NotFoundf("terrain %q not found", name).WithMeta("name", name)
}
