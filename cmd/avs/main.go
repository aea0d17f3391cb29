// avs - command-line tool for inspecting and running AVS presets
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/phoenixvis/avsengine/engine"
	"github.com/phoenixvis/avsengine/library"
	"github.com/phoenixvis/avsengine/preset"
)

func main() {
	configPath := flag.String("config", "engine.toml", "Engine configuration file")
	dbPath := flag.String("db", "presets.db", "Preset library database")
	frames := flag.Int("frames", 60, "Frames to simulate with 'run'")
	points := flag.Int("points", 16, "Points per frame with 'run'")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: avs [options] COMMAND [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  info FILE      Decode a preset and show what was extracted\n")
		fmt.Fprintf(os.Stderr, "  disasm FILE    Show the compiled point program\n")
		fmt.Fprintf(os.Stderr, "  run FILE       Simulate frames with synthetic audio and print points\n")
		fmt.Fprintf(os.Stderr, "  import FILE    Import a preset into the library\n")
		fmt.Fprintf(os.Stderr, "  list           List the preset library\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	verbosity := cfg.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cmd := flag.Arg(0)
	switch cmd {
	case "info":
		cmdInfo(cfg, requireFile())
	case "disasm":
		cmdDisasm(cfg, requireFile())
	case "run":
		cmdRun(cfg, requireFile(), *frames, *points)
	case "import":
		cmdImport(cfg, requireFile(), *dbPath)
	case "list":
		cmdList(*dbPath)
	default:
		fatalf("unknown command %q", cmd)
	}
}

func requireFile() []byte {
	if flag.NArg() < 2 {
		fatalf("missing preset file argument")
	}
	data, err := os.ReadFile(flag.Arg(1))
	if err != nil {
		fatalf("%v", err)
	}
	return data
}

func loadEngine(cfg engine.Config, data []byte) *engine.Engine {
	e := engine.New(cfg)
	if err := e.Load(data); err != nil {
		fatalf("%v", err)
	}
	return e
}

func cmdInfo(cfg engine.Config, data []byte) {
	e := loadEngine(cfg, data)
	p := e.Preset()
	fmt.Printf("format:    %s\n", p.Format)
	if p.Version != "" {
		fmt.Printf("version:   %s\n", p.Version)
	}
	fmt.Printf("truncated: %v\n", p.Truncated)
	if len(p.Effects) > 0 {
		fmt.Printf("effects:   %v\n", p.Effects)
	}
	show := func(name, frag string) {
		if frag == "" {
			return
		}
		fmt.Printf("\n[%s]\n%s\n", name, frag)
	}
	show("init", p.Fragments.Init)
	show("frame", p.Fragments.Frame)
	show("beat", p.Fragments.Beat)
	show("point", p.Fragments.Point)
}

func cmdDisasm(cfg engine.Config, data []byte) {
	e := loadEngine(cfg, data)
	fmt.Print(e.Runner().PointProgram().Disassemble())
}

func cmdRun(cfg engine.Config, data []byte, frames, points int) {
	e := loadEngine(cfg, data)
	if points > cfg.MaxPoints {
		points = cfg.MaxPoints
	}

	const dt = 1.0 / 60
	for f := 0; f < frames; f++ {
		t := float64(f) * dt
		af := syntheticAudio(t)
		e.RunFrame(af, dt)
		if af.Beat {
			e.RunBeat()
		}
	}

	fmt.Printf("# final frame, %d points\n", points)
	for i := 0; i < points; i++ {
		x, y, c, hasColor := e.RunPoint(i, points)
		if hasColor {
			fmt.Printf("%4d  % .5f  % .5f  #%02x%02x%02x\n", i, x, y, c.R, c.G, c.B)
		} else {
			fmt.Printf("%4d  % .5f  % .5f\n", i, x, y)
		}
	}
}

// syntheticAudio fabricates plausible band energies so 'run' exercises
// audio-reactive scripts without a capture device.
func syntheticAudio(t float64) engine.AudioFeatures {
	bass := 0.5 + 0.5*math.Sin(2*math.Pi*t*2)
	wave := make([]float64, 128)
	for i := range wave {
		wave[i] = 0.3 * math.Sin(2*math.Pi*(t+float64(i)/128)*110)
	}
	return engine.AudioFeatures{
		Bass:   bass,
		Mid:    0.4,
		Treb:   0.3,
		Volume: 0.5,
		Beat:   bass > 0.95,
		Wave:   wave,
	}
}

func cmdImport(cfg engine.Config, data []byte, dbPath string) {
	p, err := preset.DecodeWithOptions(data, preset.Options{
		MaxRecordBytes:   cfg.MaxRecordBytes,
		MaxFragmentLines: cfg.MaxFragmentLines,
	})
	if err != nil {
		fatalf("%v", err)
	}
	store, err := library.Open(dbPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer store.Close()

	id, inserted, err := store.Put(flag.Arg(1), data, p)
	if err != nil {
		fatalf("%v", err)
	}
	if inserted {
		fmt.Printf("imported as #%d\n", id)
	} else {
		fmt.Printf("already present as #%d\n", id)
	}
}

func cmdList(dbPath string) {
	store, err := library.Open(dbPath)
	if err != nil {
		fatalf("%v", err)
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		fatalf("%v", err)
	}
	if len(entries) == 0 {
		fmt.Println("library is empty")
		return
	}
	for _, e := range entries {
		fmt.Printf("%4d  %-8s  %s  %s\n", e.ID, e.Format, e.ImportedAt.Format("2006-01-02 15:04"), e.Name)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "avs: "+format+"\n", args...)
	os.Exit(1)
}
