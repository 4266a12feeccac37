// Shader debug tool - renders one frame of a background shader, optionally
// with a grid of particles, to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -shader my.fs -particles 16 -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pthm-cable/drift/capture"
	"github.com/pthm-cable/drift/renderer"
	"github.com/pthm-cable/drift/renderer/rlbackend"
)

func main() {
	shaderPath := flag.String("shader", "", "Path to fragment shader (empty = built-in)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	particles := flag.Int("particles", 0, "Draw an NxN grid of particles over the background")
	flag.Parse()

	var source string
	if *shaderPath != "" {
		data, err := os.ReadFile(*shaderPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read shader: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	// Hidden window for the GL context
	win := rlbackend.OpenWindow(rlbackend.WindowOptions{
		Width:  *width,
		Height: *height,
		Title:  "Shader Debug",
		Hidden: true,
	})
	defer win.Close()

	w, h := float32(*width), float32(*height)
	n := max(*particles, 1)
	backend := rlbackend.NewBackend()
	r, err := renderer.New(backend, win, renderer.Options{
		Borders:      renderer.Borders{Top: h, Left: 0, Bottom: 0, Right: w},
		Geometry:     renderer.Circle(min(w, h)/float32(4*n), 16),
		Material:     renderer.Material{Color: renderer.DefaultClearColor, Opacity: 0.8},
		Background:   renderer.Background{FragmentShader: source},
		MaxParticles: n * n,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create renderer: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	if *particles > 0 {
		grid := make([]renderer.Particle, 0, n*n)
		for i := range n {
			for j := range n {
				grid = append(grid, renderer.Particle{
					X: (float32(i) + 0.5) * w / float32(n),
					Y: (float32(j) + 0.5) * h / float32(n),
				})
			}
		}
		r.SetPositions(grid)
	}

	if err := r.Render(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render: %v\n", err)
		os.Exit(1)
	}
	img, err := backend.Frame()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read frame: %v\n", err)
		os.Exit(1)
	}
	if err := capture.WritePNG(*outPath, img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}

	size := r.Size()
	fmt.Printf("Shader rendered to: %s (%.0fx%.0f)\n", *outPath, size.Width, size.Height)
}
