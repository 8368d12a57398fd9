package garmentoverlay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garmentoverlay/garment"

	"github.com/erh/vmodutils"
	"go.viam.com/rdk/components/sensor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/robot"
	genericservice "go.viam.com/rdk/services/generic"
	rdkutils "go.viam.com/utils"
)

var (
	// TryOnSession is a headless fitting-room pipeline: it consumes the pose
	// sensor and publishes the animated overlay target through DoCommand, for
	// UIs that render the garment themselves.
	TryOnSession = resource.NewModel("viam", "garment-overlay", "try-on-session")
)

func init() {
	resource.RegisterService(genericservice.API, TryOnSession,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newTryOnSession,
		},
	)
}

// SessionGarment is one catalog entry for a headless session. Headless
// sessions track geometry only, so entries carry intrinsic sizes instead of
// decoded images.
type SessionGarment struct {
	Name    string  `json:"name"`
	Profile string  `json:"profile"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type Config struct {
	PoseSensorName string           `json:"pose_sensor_name"`
	DisplayWidth   float64          `json:"display_width"`
	DisplayHeight  float64          `json:"display_height"`
	PollRateHz     float64          `json:"poll_rate_hz"`
	Garments       []SessionGarment `json:"garments"`
}

// Validate ensures all parts of the config are valid and important fields exist.
// Returns implicit required (first return) and optional (second return) dependencies based on the config.
// The path is the JSON path in your robot's config (not the `Config` struct) to the
// resource being validated; e.g. "services.0".
func (cfg *Config) Validate(path string) ([]string, []string, error) {
	if cfg.PoseSensorName == "" {
		return nil, nil, errors.New("pose_sensor_name is required")
	}
	if len(cfg.Garments) == 0 {
		return nil, nil, errors.New("at least one garment is required")
	}
	for i, g := range cfg.Garments {
		if _, err := garment.LookupProfile(g.Profile); err != nil {
			return nil, nil, fmt.Errorf("garments.%d: %w", i, err)
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
	return nil, nil, nil
}

type tryOnSession struct {
	resource.AlwaysRebuild

	name resource.Name

	logger logging.Logger
	cfg    *Config

	robotClient robot.Robot
	poseSensor  sensor.Sensor
	session     *garment.Session

	worker *rdkutils.StoppableWorkers
}

func newTryOnSession(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*Config](rawConf)
	if err != nil {
		return nil, err
	}
	return NewTryOnSession(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewTryOnSession(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *Config, logger logging.Logger) (resource.Resource, error) {
	robotClient, err := vmodutils.ConnectToMachineFromEnv(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to machine: %w", err)
	}

	res, err := robotClient.ResourceByName(sensor.Named(conf.PoseSensorName))
	if err != nil {
		return nil, fmt.Errorf("failed to get pose sensor %q: %w", conf.PoseSensorName, err)
	}
	poseSensor, ok := res.(sensor.Sensor)
	if !ok {
		return nil, fmt.Errorf("resource %q is not a sensor", conf.PoseSensorName)
	}

	assets := make([]garment.Asset, 0, len(conf.Garments))
	for _, g := range conf.Garments {
		assets = append(assets, garment.Asset{
			Name:       g.Name,
			ProfileKey: g.Profile,
			Width:      g.Width,
			Height:     g.Height,
		})
	}
	catalog, err := garment.NewCatalog(assets)
	if err != nil {
		return nil, err
	}
	session, err := garment.NewSession(catalog, conf.DisplayWidth, conf.DisplayHeight)
	if err != nil {
		return nil, err
	}

	s := &tryOnSession{
		name:        name,
		logger:      logger,
		cfg:         conf,
		robotClient: robotClient,
		poseSensor:  poseSensor,
		session:     session,
		worker:      rdkutils.NewBackgroundStoppableWorkers(),
	}

	s.worker.Add(s.poseLoop)
	s.worker.Add(s.animationLoop)
	s.logger.Infof("try-on session %s started with %d garments", session.ID(), catalog.Len())

	return s, nil
}

func (s *tryOnSession) Name() resource.Name {
	return s.name
}

func (s *tryOnSession) Close(ctx context.Context) error {
	s.worker.Stop()
	return s.robotClient.Close(ctx)
}

func (s *tryOnSession) poseLoop(ctx context.Context) {
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

func (s *tryOnSession) animationLoop(ctx context.Context) {
	ticker := time.NewTicker(16 * time.Millisecond)
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

func (s *tryOnSession) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	switch cmd["command"] {
	case "next-garment":
		index, total := s.session.NextGarment()
		asset, _ := s.session.Catalog().Active()
		return map[string]interface{}{
			"index": index,
			"total": total,
			"name":  asset.Name,
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
