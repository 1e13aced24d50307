package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkovarik/faceattend/internal/capture"
	"github.com/mkovarik/faceattend/internal/pipeline"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Watch the camera and mark attendance for recognized faces",
	Long: `Scan opens the camera and runs the recognition loop: detect a face,
compute its embedding, match it against the registry and record
attendance. Each person is credited at most once per day. With --image,
a single still image is scanned instead of the camera.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Int("camera", 0, "Camera device ID")
	scanCmd.Flags().Duration("interval", time.Second, "Delay between camera frames")
	scanCmd.Flags().String("image", "", "Scan a single image file instead of the camera")
	scanCmd.Flags().Bool("preview", false, "Recognize without writing attendance records")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	mark := !mustGetBool(cmd, "preview")

	if imagePath := mustGetString(cmd, "image"); imagePath != "" {
		frame, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		reportScan(a.pipeline.Recognize(ctx, frame, mark))
		return nil
	}

	camera, err := capture.Open(mustGetInt(cmd, "camera"))
	if err != nil {
		return err
	}
	defer camera.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping scan...")
		cancel()
	}()

	fmt.Println("Scanning... Press Ctrl+C to stop")

	interval := mustGetDuration(cmd, "interval")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, err := camera.ReadFrame()
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
			continue
		}
		reportScan(a.pipeline.Recognize(ctx, frame, mark))
	}
}

// reportScan prints one recognition outcome in the scan loop.
func reportScan(rec *pipeline.Recognition, err error) {
	switch {
	case err != nil && pipeline.IsNoFace(err):
		// Quiet; an empty frame is the common case.
	case err != nil:
		fmt.Printf("Warning: recognition failed: %v\n", err)
	case rec.NoMatch:
		fmt.Println("Face detected but not recognized")
	case rec.Marked:
		fmt.Printf("Welcome, %s! Attendance recorded (distance %.3f)\n", rec.Name, rec.Distance)
	case rec.Repeat:
		fmt.Printf("%s is already marked today (distance %.3f)\n", rec.Name, rec.Distance)
	default:
		fmt.Printf("Recognized %s (distance %.3f)\n", rec.Name, rec.Distance)
	}
}
