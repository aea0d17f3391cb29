// avsplay - minimal live player: microphone in, superscope out
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	pa "github.com/gordonklaus/portaudio"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/phoenixvis/avsengine/engine"
)

const (
	sampleRate = 44100
	bufferLen  = 512
)

func main() {
	configPath := flag.String("config", "engine.toml", "Engine configuration file")
	width := flag.Int("w", 800, "Window width")
	height := flag.Int("h", 600, "Window height")
	points := flag.Int("points", 512, "Points per frame")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: avsplay [options] PRESET\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	commonlog.Configure(cfg.Verbosity, nil)

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	eng := engine.New(cfg)
	if err := eng.Load(data); err != nil {
		fatalf("%v", err)
	}
	eng.SetSize(*width, *height)
	n := *points
	if n > eng.MaxPoints() {
		n = eng.MaxPoints()
	}

	if err := pa.Initialize(); err != nil {
		fatalf("unable to set up portaudio: %v", err)
	}
	defer pa.Terminate()

	in := make([]float32, bufferLen)
	stream, err := pa.OpenDefaultStream(1, 0, sampleRate, len(in), in)
	if err != nil {
		fatalf("unable to open capture stream: %v", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		fatalf("unable to start capture stream: %v", err)
	}
	defer stream.Stop()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		fatalf("unable to initialise sdl: %v", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("avsplay",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(*width), int32(*height), sdl.WINDOW_SHOWN)
	if err != nil {
		fatalf("unable to create window: %v", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		fatalf("unable to create renderer: %v", err)
	}
	defer renderer.Destroy()

	an := newAnalyzer()
	wave := make([]float64, bufferLen)
	last := time.Now()

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				return
			}
		}

		if err := stream.Read(); err != nil {
			// overflow under load is harmless, keep drawing
			commonlog.NewInfoMessage(0, fmt.Sprintf("capture: %v", err))
		}
		for i, s := range in {
			wave[i] = float64(s)
		}
		af := an.analyze(wave)

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		eng.RunFrame(af, dt)
		if af.Beat {
			eng.RunBeat()
		}

		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.Clear()
		renderer.SetDrawColor(0, 255, 128, 255)
		for i := 0; i < n; i++ {
			x, y, c, hasColor := eng.RunPoint(i, n)
			if hasColor {
				renderer.SetDrawColor(c.R, c.G, c.B, 255)
			}
			// script space is [-1,1] on both axes, y up
			px := int32((x + 1) / 2 * float64(*width))
			py := int32((1 - (y+1)/2) * float64(*height))
			renderer.DrawPoint(px, py)
		}
		renderer.Present()
		sdl.Delay(16)
	}
}

// analyzer derives coarse band energies and a beat flag from the raw
// capture window, enough to drive bass/mid/treb reactive scripts.
type analyzer struct {
	bassAvg float64
}

func newAnalyzer() *analyzer {
	return &analyzer{}
}

func (a *analyzer) analyze(wave []float64) engine.AudioFeatures {
	var sum, diff1, diff2 float64
	prev := 0.0
	prevD := 0.0
	for _, s := range wave {
		sum += s * s
		d := s - prev
		diff1 += d * d
		dd := d - prevD
		diff2 += dd * dd
		prev = s
		prevD = d
	}
	num := float64(len(wave))
	if num == 0 {
		return engine.AudioFeatures{}
	}
	vol := math.Sqrt(sum / num)
	treb := math.Sqrt(diff2 / num)
	mid := math.Sqrt(diff1 / num)
	bass := vol - mid
	if bass < 0 {
		bass = 0
	}

	// rolling average with a slow decay; a beat is a clear excursion above it
	a.bassAvg = a.bassAvg*0.95 + bass*0.05
	beat := a.bassAvg > 0.001 && bass > a.bassAvg*1.6

	return engine.AudioFeatures{
		Bass:   bass,
		Mid:    mid,
		Treb:   treb,
		Volume: vol,
		Beat:   beat,
		Wave:   wave,
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "avsplay: "+format+"\n", args...)
	os.Exit(1)
}
