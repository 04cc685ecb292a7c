// Command sketchdemo draws a handful of synthetic strokes, replays them
// through the loader, undo history and playback, and writes a PNG preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/google/uuid"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/gpu"
	"github.com/gogpu/sketch/preview"
)

func main() {
	var (
		size    = flag.Int("size", 512, "preview size in pixels")
		output  = flag.String("output", "sketch.png", "output file")
		strokes = flag.Int("strokes", 12, "number of strokes to draw")
		workers = flag.Int("workers", 0, "loader workers (0 = GOMAXPROCS)")
		useGPU  = flag.Bool("gpu", false, "upload reloaded strokes to a headless GPU device")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		sketch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	catalog := newCatalog()
	clock := &sketch.ManualClock{}
	scene := sketch.NewSceneCanvas("scene", geom.Identity())
	p := sketch.NewPointer(catalog, sketch.WithPointerCanvas(scene), sketch.WithClock(clock))
	ledger := sketch.NewLedger()
	history := sketch.NewHistory(p, sketch.DefaultHistoryLimit)

	err := drawStrokes(p, clock, history, ledger, *strokes)
	if err != nil {
		log.Fatalf("Failed to draw: %v", err)
	}
	log.Printf("Drew %d strokes, %d vertices", ledger.Len(), vertexCount(ledger))

	// Undo and redo the last stroke.
	if err := history.Undo(); err != nil {
		log.Fatalf("Undo failed: %v", err)
	}
	log.Printf("After undo: %d strokes", ledger.Len())
	if err := history.Redo(); err != nil {
		log.Fatalf("Redo failed: %v", err)
	}

	// Round trip through save copies and a parallel reload.
	saved := make([]*sketch.Stroke, 0, ledger.Len())
	for s := range ledger.All() {
		saved = append(saved, sketch.NewStroke(*s.CopyForSave()))
		s.Uncreate()
	}
	ledger.Clear()
	history.Clear()

	var (
		device    hal.Device
		renderer  *gpu.StrokeRenderer
		gpuCanvas *gpu.Canvas
	)
	if *useGPU {
		var queue hal.Queue
		var cleanup func()
		device, queue, cleanup, err = openDevice()
		if err != nil {
			log.Fatalf("Failed to open GPU device: %v", err)
		}
		defer cleanup()
		renderer = gpu.NewStrokeRenderer(device, queue)
		defer renderer.Destroy()
		gpuCanvas = gpu.NewCanvas(renderer, "gpu", geom.Identity())
		defer gpuCanvas.Close()
		p.SetCanvas(gpuCanvas)
	}

	loader := sketch.NewLoader(p, ledger, sketch.WithWorkers(*workers))
	stats, err := loader.Load(context.Background(), saved)
	loader.Close()
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	log.Printf("Reloaded %d strokes in %v (skipped %d, rejected %d)",
		stats.Created, stats.Duration, stats.Skipped, stats.Rejected)

	if gpuCanvas != nil {
		st := gpuCanvas.Stats()
		log.Printf("GPU canvas: %d strokes, %d indices, %d bytes",
			st.Strokes, st.Indices, st.VertexBytes+st.IndexBytes)
		draws, err := recordFrame(device, renderer, gpuCanvas)
		if err != nil {
			log.Fatalf("Failed to record frame: %v", err)
		}
		log.Printf("Recorded %d draws", draws)
		// The preview rasterizes the scene canvas.
		for s := range ledger.All() {
			if err := s.SetParent(scene); err != nil {
				log.Fatalf("Reparent failed: %v", err)
			}
		}
	}

	if ledger.Len() > 0 {
		pb := sketch.NewPlayback(ledger)
		half := ledger.At(ledger.Len() / 2).HeadTimestampMs()
		log.Printf("Playback at %dms shows %d strokes", half, pb.Seek(half))
		pb.ShowAll()
	}

	img, pstats := preview.RenderLedger(ledger,
		preview.WithSize(*size, *size),
		preview.WithView(geom.FromRotation(geom.AngleAxis(-math.Pi/6, geom.AxisX))),
		preview.WithCaption(fmt.Sprintf("%d strokes", ledger.Len())),
	)
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if err := preview.WritePNG(f, img); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to save: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Preview saved to %s (%d triangles)\n", *output, pstats.Triangles)
}

func newCatalog() *brush.Catalog {
	tube := brush.NewDescriptor(uuid.New(), "Tube", brush.GeneratorTube)
	tube.BrushSizeRange = [2]float64{0.005, 0.2}
	ribbon := brush.NewDescriptor(uuid.New(), "Ribbon", brush.GeneratorRibbon)
	ribbon.BrushSizeRange = [2]float64{0.01, 0.3}
	return brush.NewCatalog(brush.Manifest{Brushes: []*brush.Descriptor{tube, ribbon}})
}

// drawStrokes sweeps the pointer along helices around the Y axis.
func drawStrokes(p *sketch.Pointer, clock *sketch.ManualClock, h *sketch.History, l *sketch.Ledger, n int) error {
	brushes := p.Catalog().GUIBrushes()
	const samples = 48
	for i := range n {
		p.SetBrush(brushes[i%len(brushes)])
		p.SetBrushSize01(0.3 + 0.4*float64(i%3)/2)
		p.SetColor(brush.HSL{H: 6 * float64(i) / float64(n), S: 0.8, L: 0.5, A: 1}.Color())

		phase := 2 * math.Pi * float64(i) / float64(n)
		p.SetDrawingEnabled(true)
		for k := range samples {
			t := float64(k) / samples
			a := phase + t*math.Pi
			pos := geom.Vec3{math.Cos(a), t - 0.5, math.Sin(a)}
			tangent := geom.Vec3{-math.Sin(a), 1 / math.Pi, math.Cos(a)}
			xf := geom.FromTR(pos, geom.LookRotation(tangent, geom.AxisY))
			if _, err := p.Tick(xf, 0.5+0.5*math.Sin(t*math.Pi)); err != nil {
				return err
			}
			clock.Advance(11 * time.Millisecond)
		}
		p.SetDrawingEnabled(false)
		s, err := p.Tick(geom.Identity(), 0)
		if err != nil {
			return err
		}
		if s == nil {
			continue
		}
		if err := h.Perform(&sketch.AddStroke{Ledger: l, Stroke: s}); err != nil {
			return err
		}
		clock.Advance(250 * time.Millisecond)
	}
	return nil
}

func vertexCount(l *sketch.Ledger) int {
	var n int
	for s := range l.All() {
		if g := s.Geometry(); g != nil {
			n += g.Mesh.VertexCount()
		}
	}
	return n
}

// openDevice opens the headless noop backend.
func openDevice() (hal.Device, hal.Queue, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, err
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// recordFrame records one frame of the GPU canvas and discards it.
func recordFrame(device hal.Device, r *gpu.StrokeRenderer, c *gpu.Canvas) (int, error) {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "sketchdemo"})
	if err != nil {
		return 0, err
	}
	if err := encoder.BeginEncoding("sketchdemo"); err != nil {
		return 0, err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{Label: "strokes"})
	viewProj := mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 100).
		Mul4(mgl64.LookAtV(mgl64.Vec3{0, 1, 3}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}))
	draws, err := r.RecordDraws(rp, viewProj, c)
	rp.End()
	encoder.DiscardEncoding()
	return draws, err
}
