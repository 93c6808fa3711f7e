// Command wavetrace is the CLI entry point: render, preview, and info
// subcommands over a scene file, built as a urfave/cli app-with-
// subcommands, with log.Println progress lines and log.Fatal only at
// the boundary.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sixy6e/wavetrace/bitmap"
	"github.com/sixy6e/wavetrace/render"
	"github.com/sixy6e/wavetrace/scene"
	"github.com/sixy6e/wavetrace/scene/loader"
)

var sceneFileFlag = &cli.StringFlag{
	Name:     "scene",
	Usage:    "URI or pathname to a scene file.",
	Required: true,
}

var configURIFlag = &cli.StringFlag{
	Name:  "config-uri",
	Usage: "URI or pathname to a TileDB config file.",
}

var definesFlag = &cli.StringSliceFlag{
	Name:  "D",
	Usage: "scene-loader define, repeatable: -D key=value",
}

var threadsFlag = &cli.IntFlag{
	Name:  "threads",
	Usage: "render worker count. Default is 2*NumCPU.",
}

var outPrefixFlag = &cli.StringFlag{
	Name:  "out-prefix",
	Usage: "URI or pathname prefix PNG previews are written under, one file per sensor.",
	Value: "wavetrace-out",
}

func parseDefines(raw []string) map[string]string {
	defines := make(map[string]string, len(raw))
	for _, d := range raw {
		k, v, ok := strings.Cut(d, "=")
		if !ok {
			continue
		}
		defines[k] = v
	}
	return defines
}

// loadScene opens sceneURI, parses it against defines, and builds the
// Scene aggregate, reusing scene.AssetStore for any <shape type="obj">
// external mesh references.
func loadScene(sceneURI, configURI string, defines map[string]string) (*scene.Scene, *scene.AssetStore, error) {
	f, err := os.Open(sceneURI)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	root, err := loader.Parse(f, defines)
	if err != nil {
		return nil, nil, err
	}

	assets, err := scene.NewAssetStore(configURI)
	if err != nil {
		return nil, nil, err
	}

	sc, err := scene.Build(root, assets, nil)
	if err != nil {
		assets.Close()
		return nil, nil, err
	}
	return sc, assets, nil
}

func runRender(cCtx *cli.Context) error {
	defines := parseDefines(cCtx.StringSlice("D"))
	sc, assets, err := loadScene(cCtx.String("scene"), cCtx.String("config-uri"), defines)
	if err != nil {
		return err
	}
	defer assets.Close()

	workers := cCtx.Int("threads")
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	var tev *render.TevPreviewer
	if addr := cCtx.String("preview-addr"); addr != "" {
		tev, err = render.DialTev(addr)
		if err != nil {
			return err
		}
		defer tev.Close()
	}

	log.Println("Rendering scene:", cCtx.String("scene"))
	sched := render.NewScheduler(render.Options{
		Workers:       workers,
		Integrator:    sc.Options,
		Preview:       tev,
		PreviewSensor: cCtx.String("preview-sensor"),
		Progress: func(sensorIndex int, done, total int) {
			log.Printf("sensor %d: block %d/%d\n", sensorIndex, done, total)
		},
	})
	results := sched.Run(sc.IntegratorContext(), sc, sc.Sensors, sc.SamplesPerElement)

	outPrefix := cCtx.String("out-prefix")
	for i, r := range results {
		w, _, d := r.Sensor.Resolution()
		channels := 3
		if d > 1 {
			channels = 1
		}
		data, err := bitmap.EncodePNG(r.Storage, bitmap.DefaultSettings(channels))
		if err != nil {
			return err
		}
		out := fmt.Sprintf("%s-%d.png", outPrefix, i)
		if _, err := bitmap.WriteVFS(out, cCtx.String("config-uri"), data); err != nil {
			return err
		}
		log.Println("Wrote", out, "width", w)
	}

	return nil
}

func runPreview(cCtx *cli.Context) error {
	if cCtx.String("preview-addr") == "" {
		return fmt.Errorf("preview: --preview-addr is required")
	}
	return runRender(cCtx)
}

func runInfo(cCtx *cli.Context) error {
	defines := parseDefines(cCtx.StringSlice("D"))
	sc, assets, err := loadScene(cCtx.String("scene"), cCtx.String("config-uri"), defines)
	if err != nil {
		return err
	}
	defer assets.Close()

	log.Println("Emitters:", len(sc.Emitters()))
	log.Println("Sensors:", len(sc.Sensors))
	for i, s := range sc.Sensors {
		w, h, d := s.Resolution()
		log.Printf("  sensor %d %q: %dx%dx%d, %d spp\n", i, s.Description(), w, h, d, sc.SamplesPerElement[i])
	}
	log.Println("Integrator options:", sc.Options)
	return nil
}

func main() {
	previewAddrFlag := &cli.StringFlag{
		Name:  "preview-addr",
		Usage: "host:port of a running tev instance to stream partial-film updates to.",
	}
	previewSensorFlag := &cli.StringFlag{
		Name:  "preview-sensor",
		Usage: "name of the sensor to preview; ignored if --preview-addr is unset.",
	}

	app := &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "a wave-optics bidirectional path tracer",
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "render every sensor in a scene file and write tonemapped PNG previews",
				Flags:  []cli.Flag{sceneFileFlag, configURIFlag, definesFlag, threadsFlag, outPrefixFlag, previewAddrFlag, previewSensorFlag},
				Action: runRender,
			},
			{
				Name:   "preview",
				Usage:  "render while streaming partial-film updates to a running tev instance",
				Flags:  []cli.Flag{sceneFileFlag, configURIFlag, definesFlag, threadsFlag, outPrefixFlag, previewAddrFlag, previewSensorFlag},
				Action: runPreview,
			},
			{
				Name:   "info",
				Usage:  "parse a scene file and report its emitters, sensors, and integrator options",
				Flags:  []cli.Flag{sceneFileFlag, configURIFlag, definesFlag},
				Action: runInfo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
