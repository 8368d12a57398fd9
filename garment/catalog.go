package garment

import (
	"fmt"
	"image"
	"sync"
)

// Asset is one selectable garment: an image plus the profile key that tells
// the geometry resolver how to fit it to the wearer.
type Asset struct {
	Name       string
	ProfileKey string
	Image      image.Image
	// Intrinsic asset size in display units, used to seed the smoother before
	// the first pose arrives. Zero means use the decoded image bounds.
	Width  float64
	Height float64
}

// size returns the asset's intrinsic size, falling back to the decoded image
// bounds and finally to a generic garment footprint.
func (a Asset) size() (float64, float64) {
	if a.Width > 0 && a.Height > 0 {
		return a.Width, a.Height
	}
	if a.Image != nil {
		b := a.Image.Bounds()
		if b.Dx() > 0 && b.Dy() > 0 {
			return float64(b.Dx()), float64(b.Dy())
		}
	}
	return 300, 380
}

// Catalog is the ordered garment list with a cursor selecting the active
// entry. The cursor is advanced from the user-action path and read from the
// pose-processing path, so access is serialized internally; an advance is an
// atomic index change and never touches in-flight geometry.
type Catalog struct {
	mu      sync.Mutex
	assets  []Asset
	cursor  int
	profile []Profile // resolved per asset at construction
}

// NewCatalog validates every asset's profile key up front and fails fast on
// an unknown key.
func NewCatalog(assets []Asset) (*Catalog, error) {
	if len(assets) == 0 {
		return nil, ErrEmptyCatalog
	}
	profiles := make([]Profile, len(assets))
	for i, a := range assets {
		p, err := LookupProfile(a.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("garment %q: %w", a.Name, err)
		}
		profiles[i] = p
	}
	return &Catalog{assets: assets, profile: profiles}, nil
}

// Active returns the current asset and its resolved profile.
func (c *Catalog) Active() (Asset, Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assets[c.cursor], c.profile[c.cursor]
}

// Advance moves the cursor to the next garment, wrapping past the end, and
// returns the new index.
func (c *Catalog) Advance() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = (c.cursor + 1) % len(c.assets)
	return c.cursor
}

// Index returns the current cursor position.
func (c *Catalog) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Len returns the number of garments in the catalog.
func (c *Catalog) Len() int {
	return len(c.assets)
}

// Add appends a garment to the catalog, validating its profile key first.
func (c *Catalog) Add(a Asset) error {
	p, err := LookupProfile(a.ProfileKey)
	if err != nil {
		return fmt.Errorf("garment %q: %w", a.Name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = append(c.assets, a)
	c.profile = append(c.profile, p)
	return nil
}
