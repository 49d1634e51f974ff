// Command sensor is the TuskWatch field gateway CLI.
//
// Usage:
//
//	tuskwatch-sensor send --device cam-07 --lat 21.1458 --lon 79.0882 --confidence 0.92
//	tuskwatch-sensor simulate --devices 5 --interval 10s --center-lat 21.1458 --center-lon 79.0882
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hathi-labs/tuskwatch/internal/pipeline"
	"github.com/hathi-labs/tuskwatch/internal/sensor"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "tuskwatch-sensor",
		Short: "TuskWatch field gateway CLI",
	}

	root.AddCommand(sendCmd())
	root.AddCommand(simulateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// send command
// --------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	var (
		apiURL     string
		deviceID   string
		lat, lon   float64
		confidence float64
		battery    float64
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a single detection event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deviceID == "" {
				return fmt.Errorf("--device is required")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			client := sensor.NewClient(apiURL, 60, logger)
			in := pipeline.IncomingDetection{DeviceID: deviceID, Latitude: &lat, Longitude: &lon}
			if cmd.Flags().Changed("confidence") {
				in.Confidence = &confidence
			}
			if cmd.Flags().Changed("battery") {
				in.Battery = &battery
			}

			result, err := client.SendDetection(ctx, in)
			if err != nil {
				return err
			}
			logger.Info("Detection accepted",
				"detection_id", result.Detection.ID,
				"zones_matched", len(result.Zones),
				"general_mobile_sent", result.General.Mobile.Sent,
				"general_web_sent", result.General.Web.Sent)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8000", "API base URL")
	cmd.Flags().StringVar(&deviceID, "device", "", "Device identifier")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Detection confidence (0-1)")
	cmd.Flags().Float64Var(&battery, "battery", 0, "Battery percentage")
	return cmd
}

// --------------------------------------------------------------------------
// simulate command
// --------------------------------------------------------------------------

func simulateCmd() *cobra.Command {
	var (
		apiURL    string
		devices   int
		interval  time.Duration
		centerLat float64
		centerLon float64
		spreadKM  float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Stream randomized detections from simulated devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			client := sensor.NewClient(apiURL, 120, logger)
			logger.Info("Simulator started",
				"devices", devices, "interval", interval,
				"center", fmt.Sprintf("(%.4f, %.4f)", centerLat, centerLon))

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					in := randomDetection(devices, centerLat, centerLon, spreadKM)
					result, err := client.SendDetection(ctx, in)
					if err != nil {
						logger.Warn("send failed", "device", in.DeviceID, "error", err)
						continue
					}
					logger.Info("sent",
						"device", in.DeviceID,
						"detection_id", result.Detection.ID,
						"zones", len(result.Zones))
				case <-ctx.Done():
					logger.Info("Simulator stopped")
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8000", "API base URL")
	cmd.Flags().IntVar(&devices, "devices", 3, "Number of simulated devices")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Second, "Delay between detections")
	cmd.Flags().Float64Var(&centerLat, "center-lat", 21.1458, "Center latitude")
	cmd.Flags().Float64Var(&centerLon, "center-lon", 79.0882, "Center longitude")
	cmd.Flags().Float64Var(&spreadKM, "spread", 5, "Max distance from center in km")
	return cmd
}

// randomDetection picks a random device and a point within spreadKM of the
// center. 1 degree of latitude ≈ 111 km; longitude is close enough at
// these latitudes for a simulator.
func randomDetection(devices int, centerLat, centerLon, spreadKM float64) pipeline.IncomingDetection {
	lat := centerLat + (rand.Float64()*2-1)*spreadKM/111.0
	lon := centerLon + (rand.Float64()*2-1)*spreadKM/111.0
	confidence := 0.5 + rand.Float64()*0.5
	battery := 20 + rand.Float64()*80
	return pipeline.IncomingDetection{
		DeviceID:   fmt.Sprintf("sim-%02d", rand.IntN(devices)+1),
		Latitude:   &lat,
		Longitude:  &lon,
		Confidence: &confidence,
		Battery:    &battery,
	}
}
