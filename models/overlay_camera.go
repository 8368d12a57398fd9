package models

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"garmentoverlay/garment"

	"github.com/disintegration/imaging"
	"github.com/go-viper/mapstructure/v2"
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
	rdkutils "go.viam.com/utils"
)

var (
	// OverlayCamera wraps a live camera feed and draws the active garment
	// over the wearer, tracking the pose sensor's keypoints.
	OverlayCamera = resource.NewModel("viam", "garment-overlay", "overlay-camera")
)

func init() {
	resource.RegisterComponent(camera.API, OverlayCamera,
		resource.Registration[camera.Camera, *Config]{
			Constructor: newOverlayCamera,
		},
	)
}

// animationTickInterval drives the render interpolation loop at roughly 60Hz,
// independent of how fast pose frames arrive.
const animationTickInterval = 16 * time.Millisecond

// GarmentConfig is one catalog entry in the component config.
type GarmentConfig struct {
	Name      string `json:"name" mapstructure:"name"`
	ImagePath string `json:"image_path" mapstructure:"image_path"`
	Profile   string `json:"profile" mapstructure:"profile"`
}

type Config struct {
	CameraName     string          `json:"camera_name"`
	PoseSensorName string          `json:"pose_sensor_name"`
	DisplayWidth   float64         `json:"display_width"`
	DisplayHeight  float64         `json:"display_height"`
	PollRateHz     float64         `json:"poll_rate_hz"`
	Garments       []GarmentConfig `json:"garments"`
}

// Validate ensures all parts of the config are valid and important fields exist.
// Returns implicit required (first return) and optional (second return) dependencies based on the config.
// The path is the JSON path in your robot's config (not the `Config` struct) to the
// resource being validated; e.g. "components.0".
func (cfg *Config) Validate(path string) ([]string, []string, error) {
	if cfg.CameraName == "" {
		return nil, nil, errors.New("camera_name is required")
	}
	if cfg.PoseSensorName == "" {
		return nil, nil, errors.New("pose_sensor_name is required")
	}
	if len(cfg.Garments) == 0 {
		return nil, nil, errors.New("at least one garment is required")
	}
	for i, g := range cfg.Garments {
		if g.ImagePath == "" {
			return nil, nil, fmt.Errorf("garments.%d: image_path is required", i)
		}
		if _, err := garment.LookupProfile(g.Profile); err != nil {
			return nil, nil, fmt.Errorf("garments.%d: %w (known profiles: %v)", i, err, garment.ProfileKeys())
		}
	}
	// Set defaults for optional parameters
	if cfg.DisplayWidth == 0 {
		cfg.DisplayWidth = 640
	}
	if cfg.DisplayHeight == 0 {
		cfg.DisplayHeight = 480
	}
	if cfg.PollRateHz == 0 {
		cfg.PollRateHz = 60
	}
	if cfg.PollRateHz < 0 {
		return nil, nil, errors.New("poll_rate_hz must be greater than 0")
	}
	return []string{cfg.CameraName, cfg.PoseSensorName}, nil, nil
}

type overlayCamera struct {
	resource.AlwaysRebuild
	name resource.Name

	logger logging.Logger
	cfg    *Config

	underlyingCam camera.Camera
	poseSensor    sensor.Sensor

	session *garment.Session

	// resize cache for the active garment at the current animated size
	resizeMu  sync.Mutex
	resizeKey resizeKey
	resized   image.Image

	worker *rdkutils.StoppableWorkers
}

type resizeKey struct {
	index  int
	width  int
	height int
}

func newOverlayCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*Config](rawConf)
	if err != nil {
		return nil, err
	}
	return NewOverlayCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewOverlayCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *Config, logger logging.Logger) (camera.Camera, error) {
	cam, err := camera.FromDependencies(deps, conf.CameraName)
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying camera: %w", err)
	}
	poseSensor, err := sensor.FromDependencies(deps, conf.PoseSensorName)
	if err != nil {
		return nil, fmt.Errorf("failed to get pose sensor: %w", err)
	}

	catalog, err := loadCatalog(conf.Garments)
	if err != nil {
		return nil, err
	}
	session, err := garment.NewSession(catalog, conf.DisplayWidth, conf.DisplayHeight)
	if err != nil {
		return nil, err
	}

	s := &overlayCamera{
		name:          name,
		logger:        logger,
		cfg:           conf,
		underlyingCam: cam,
		poseSensor:    poseSensor,
		session:       session,
		worker:        rdkutils.NewBackgroundStoppableWorkers(),
	}

	s.worker.Add(s.poseLoop)
	s.worker.Add(s.animationLoop)
	s.logger.Infof("garment overlay camera started, session %s, %d garments", session.ID(), catalog.Len())

	return s, nil
}

// loadCatalog decodes every configured garment image up front so a bad path
// or unknown profile key fails the component instead of a frame.
func loadCatalog(garments []GarmentConfig) (*garment.Catalog, error) {
	assets := make([]garment.Asset, 0, len(garments))
	for _, g := range garments {
		img, err := imaging.Open(g.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load garment image %q: %w", g.ImagePath, err)
		}
		assets = append(assets, garment.Asset{
			Name:       g.Name,
			ProfileKey: g.Profile,
			Image:      img,
		})
	}
	return garment.NewCatalog(assets)
}

func (s *overlayCamera) Name() resource.Name {
	return s.name
}

func (s *overlayCamera) Close(context.Context) error {
	s.worker.Stop()
	return nil
}

// poseLoop polls the pose sensor at the configured rate and feeds frames to
// the session. The gate inside the session decides which frames are actually
// processed; per-iteration errors are logged and the loop keeps going.
func (s *overlayCamera) poseLoop(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / s.cfg.PollRateHz)
	s.logger.Debugf("pose loop interval: %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			readings, err := s.poseSensor.Readings(ctx, nil)
			if err != nil {
				s.logger.Errorf("failed to read pose sensor: %v", err)
				continue
			}
			frame, err := garment.ParseReadings(readings)
			if err != nil {
				s.logger.Warnf("malformed pose readings: %v", err)
				continue
			}
			s.session.HandleFrame(frame, time.Now())
		}
	}
}

// animationLoop ticks the animator so the overlay keeps easing toward its
// target between processed pose frames.
func (s *overlayCamera) animationLoop(ctx context.Context) {
	ticker := time.NewTicker(animationTickInterval)
	defer ticker.Stop()

	animator := s.session.Animator()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			animator.Tick(time.Now())
		}
	}
}

func (s *overlayCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	s.logger.Debugf("DoCommand: %+v", cmd)
	switch cmd["command"] {
	case "next-garment":
		index, total := s.session.NextGarment()
		asset, _ := s.session.Catalog().Active()
		return map[string]interface{}{
			"index": index,
			"total": total,
			"name":  asset.Name,
		}, nil

	case "current-garment":
		asset, profile := s.session.Catalog().Active()
		return map[string]interface{}{
			"index":   s.session.Catalog().Index(),
			"total":   s.session.Catalog().Len(),
			"name":    asset.Name,
			"profile": asset.ProfileKey,
			"kind":    profile.Kind.String(),
		}, nil

	case "get-target":
		tgt := s.session.Animator().Target()
		return map[string]interface{}{
			"x":          tgt.Rect.X,
			"y":          tgt.Rect.Y,
			"width":      tgt.Rect.Width,
			"height":     tgt.Rect.Height,
			"visibility": tgt.Visibility,
		}, nil

	case "add-garment":
		var g GarmentConfig
		if err := mapstructure.Decode(cmd, &g); err != nil {
			return nil, fmt.Errorf("failed to decode garment: %w", err)
		}
		if g.ImagePath == "" {
			return nil, errors.New("image_path is required")
		}
		img, err := imaging.Open(g.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load garment image %q: %w", g.ImagePath, err)
		}
		if err := s.session.Catalog().Add(garment.Asset{
			Name:       g.Name,
			ProfileKey: g.Profile,
			Image:      img,
		}); err != nil {
			return nil, err
		}
		return map[string]interface{}{"total": s.session.Catalog().Len()}, nil

	case "stats":
		return map[string]interface{}{
			"session":          s.session.ID().String(),
			"frames_seen":      s.session.FramesSeen(),
			"frames_processed": s.session.FramesProcessed(),
		}, nil

	default:
		return nil, fmt.Errorf("invalid command: %v", cmd["command"])
	}
}

// drawGarment composites the active garment over a camera frame at the
// animator's current rectangle, faded by the visibility scale.
func (s *overlayCamera) drawGarment(img image.Image) image.Image {
	tgt := s.session.Animator().Target()
	if tgt.Visibility < 0.01 {
		return img
	}
	asset, _ := s.session.Catalog().Active()
	if asset.Image == nil {
		return img
	}

	w := int(tgt.Rect.Width + 0.5)
	h := int(tgt.Rect.Height + 0.5)
	if w < 1 || h < 1 {
		return img
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	scaled := s.scaledGarment(asset, s.session.Catalog().Index(), w, h)
	dst := image.Rect(0, 0, w, h).
		Add(image.Pt(int(tgt.Rect.X), int(tgt.Rect.Y))).
		Add(bounds.Min)

	vis := tgt.Visibility
	if vis > 1 {
		vis = 1
	}
	mask := image.NewUniform(color.Alpha{A: uint8(vis * 255)})
	draw.DrawMask(rgba, dst, scaled, image.Point{}, mask, image.Point{}, draw.Over)

	return rgba
}

// scaledGarment resizes the garment to the animated rect, reusing the last
// result while the size and selection are unchanged.
func (s *overlayCamera) scaledGarment(asset garment.Asset, index, w, h int) image.Image {
	key := resizeKey{index: index, width: w, height: h}

	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()
	if s.resized != nil && s.resizeKey == key {
		return s.resized
	}
	s.resized = imaging.Resize(asset.Image, w, h, imaging.Lanczos)
	s.resizeKey = key
	return s.resized
}

func (s *overlayCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return nil, camera.ImageMetadata{}, errors.New("single-mime image not implemented, use Images")
}

func (s *overlayCamera) Images(ctx context.Context, mimeTypes []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	imgs, meta, err := s.underlyingCam.Images(ctx, mimeTypes, extra)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}

	resultImgs := make([]camera.NamedImage, len(imgs))
	for i, namedImg := range imgs {
		img, err := namedImg.Image(ctx)
		if err != nil {
			return nil, resource.ResponseMetadata{}, err
		}

		withGarment := s.drawGarment(img)

		resultImg, err := camera.NamedImageFromImage(withGarment, namedImg.SourceName, namedImg.MimeType())
		if err != nil {
			return nil, resource.ResponseMetadata{}, err
		}
		resultImgs[i] = resultImg
	}

	return resultImgs, meta, nil
}

func (s *overlayCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, errors.New("next point cloud not implemented")
}

func (s *overlayCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return s.underlyingCam.Properties(ctx)
}

func (s *overlayCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}
