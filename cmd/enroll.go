package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [name]",
	Short: "Register a person's face in the embedding registry",
	Long: `Enroll registers a face for later recognition. With a name argument and
--image, the face found in the image is stored under that name. With
--dir, every image in the directory is enrolled using its file name
(without extension) as the identity, e.g. "Alice Smith.jpg" -> "Alice Smith".

Re-enrolling an existing name replaces the stored embedding.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("image", "", "Image file containing the face to enroll")
	enrollCmd.Flags().String("dir", "", "Directory of images to batch-enroll (file name = identity)")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	imagePath := mustGetString(cmd, "image")
	dirPath := mustGetString(cmd, "dir")

	if (imagePath == "") == (dirPath == "") {
		return fmt.Errorf("exactly one of --image or --dir is required")
	}
	if imagePath != "" && len(args) != 1 {
		return fmt.Errorf("a name argument is required with --image")
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if imagePath != "" {
		return enrollOne(ctx, a, args[0], imagePath)
	}
	return enrollDir(ctx, a, dirPath)
}

func enrollOne(ctx context.Context, a *app, name, path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	if err := a.pipeline.Enroll(ctx, name, frame); err != nil {
		return err
	}
	fmt.Printf("Enrolled %s from %s\n", name, path)
	return nil
}

// enrollDir walks one directory level and enrolls every image file, using the
// base name without extension as the identity.
func enrollDir(ctx context.Context, a *app, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, entry.Name())
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	fmt.Printf("Enrolling %d identities from %s\n", len(images), dir)

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var failed []string
	for _, img := range images {
		name := strings.TrimSuffix(img, filepath.Ext(img))
		frame, err := os.ReadFile(filepath.Join(dir, img))
		if err == nil {
			err = a.pipeline.Enroll(ctx, name, frame)
		}
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", img, err))
		}
		bar.Add(1)
	}
	fmt.Println()

	for _, f := range failed {
		fmt.Printf("Warning: %s\n", f)
	}
	fmt.Printf("Enrolled %d identities (%d failed)\n", len(images)-len(failed), len(failed))
	return nil
}
