// Command coverage-compositor merges georeferenced SPLAT! coverage
// overlays into a single composite map, legend and KML descriptor.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"coverage-compositor/internal/colorscale"
	"coverage-compositor/internal/composite"
	"coverage-compositor/internal/job"
	"coverage-compositor/internal/kmlout"
	"coverage-compositor/internal/layer"
	"coverage-compositor/internal/legend"
	"coverage-compositor/internal/report"
	"coverage-compositor/internal/version"
)

// Descriptors with this substring in their name are earlier composite
// outputs and are never merged back in.
const outputExclude = "composite"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	jobPath := flag.String("job", "", "JSON job file to load (flags override its values)")
	dir := flag.String("dir", ".", "directory scanned for *.kml coverage layers")
	lcf := flag.String("lcf", "color_scale.lcf", "loss color file shared by all layers")
	mode := flag.String("mode", job.ModeBestSignal, "merge mode: best, server or overlap")
	threshold := flag.Float64("threshold", composite.DefaultValidThreshold,
		"weakest path loss (dB) counted as usable signal (server and overlap modes)")
	minOverlap := flag.Int("min-overlap", composite.DefaultMinOverlap,
		"layers required to keep a pixel in overlap mode")
	out := flag.String("out", "", "output base name (default depends on mode)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("coverage-compositor %s (%s)\n", version.Version, version.GitCommit)
		return
	}

	j := job.New()
	if *jobPath != "" {
		loaded, err := job.Load(*jobPath)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		j = loaded
	}

	outSet := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			j.InputDir = *dir
		case "lcf":
			j.ScalePath = *lcf
		case "mode":
			j.Mode = *mode
		case "threshold":
			j.ValidThreshold = *threshold
		case "min-overlap":
			j.MinOverlap = *minOverlap
		case "out":
			j.OutputName = *out
			outSet = true
		}
	})
	if !outSet && *jobPath == "" {
		j.OutputName = defaultOutputName(j.Mode)
	}

	if err := run(j); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(j *job.Job) error {
	if err := j.Validate(); err != nil {
		return err
	}

	// A broken color table is fatal before any layer work.
	scale, err := colorscale.Load(j.ScalePath)
	if err != nil {
		return err
	}
	log.Printf("loaded %d colors from %s", scale.Len(), j.ScalePath)

	layers, err := layer.Discover(j.InputDir, outputExclude, log.Default())
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return fmt.Errorf("%w in %s", composite.ErrNoLayers, j.InputDir)
	}

	cp := &composite.Compositor{
		Scale:  scale,
		Policy: j.Policy(),
		Logger: log.Default(),
	}
	res, err := cp.Run(layers)
	if err != nil {
		return err
	}

	imageName := j.OutputName + ".png"
	legendName := j.OutputName + "_legend.png"

	if err := writePNG(filepath.Join(j.InputDir, imageName), res.Image); err != nil {
		return err
	}

	var legendImg *image.RGBA
	if j.Mode == job.ModeBestServer {
		legendImg = legend.RenderServers(layers)
	} else {
		legendImg = legend.RenderScale(scale)
	}
	if err := writePNG(filepath.Join(j.InputDir, legendName), legendImg); err != nil {
		return err
	}

	folderName, overlayName := kmlNames(j.Mode)
	doc := kmlout.Document{
		FolderName:  folderName,
		OverlayName: overlayName,
		ImageHref:   imageName,
		LegendHref:  legendName,
		Box:         res.Box,
	}
	if err := kmlout.Write(filepath.Join(j.InputDir, j.OutputName+".kml"), doc); err != nil {
		return err
	}

	log.Printf("%s", report.Summarize(res.Canvas))
	log.Printf("done: created %s, %s and %s.kml", imageName, legendName, j.OutputName)
	return nil
}

func defaultOutputName(mode string) string {
	switch mode {
	case job.ModeBestServer:
		return "composite_best_server"
	case job.ModeOverlap:
		return "composite_overlap"
	default:
		return "composite_coverage"
	}
}

func kmlNames(mode string) (folder, overlay string) {
	switch mode {
	case job.ModeBestServer:
		return "SPLAT! Best Server Map", "Dominance Zones"
	case job.ModeOverlap:
		return "SPLAT! Overlap Composite", "Overlap Map (2+ Sources)"
	default:
		return "SPLAT! Composite", "Coverage Map"
	}
}

// writePNG encodes through a temporary file so a failed run never leaves a
// partial image behind.
func writePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
