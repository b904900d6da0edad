// Command lcfcheck parses a loss color file and prints its entries in
// legend order, for checking a color scale before a compositing run.
package main

import (
	"flag"
	"fmt"
	"os"

	"coverage-compositor/internal/colorscale"
)

func main() {
	path := flag.String("lcf", "color_scale.lcf", "loss color file to inspect")
	flag.Parse()

	scale, err := colorscale.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load color scale: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d colors\n", *path, scale.Len())
	for _, e := range scale.Entries() {
		fmt.Printf("  %7.1f dB  #%02x%02x%02x (%3d, %3d, %3d)\n",
			e.Value, e.R, e.G, e.B, e.R, e.G, e.B)
	}
}
