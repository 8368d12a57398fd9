package main

import (
	"context"
	garmentoverlay "garmentoverlay"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	genericservice "go.viam.com/rdk/services/generic"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	ctx := context.Background()
	logger := logging.NewLogger("cli")

	deps := resource.Dependencies{}
	// can load these from a remote machine if you need

	cfg := garmentoverlay.Config{
		PoseSensorName: "pose-sensor",
		DisplayWidth:   640,
		DisplayHeight:  480,
		PollRateHz:     60.0,
		Garments: []garmentoverlay.SessionGarment{
			{Name: "white tee", Profile: "tshirt", Width: 300, Height: 380},
			{Name: "denim jacket", Profile: "jacket", Width: 320, Height: 400},
			{Name: "summer dress", Profile: "dress", Width: 320, Height: 520},
		},
	}

	thing, err := garmentoverlay.NewTryOnSession(ctx, deps, genericservice.Named("fitting-room"), &cfg, logger)
	if err != nil {
		return err
	}
	defer thing.Close(ctx)

	return nil
}
