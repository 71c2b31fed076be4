package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"bayesdepth/pkg/config"
	"bayesdepth/pkg/dataset"
)

func main() {
	// Parse command line arguments
	datasetPath := flag.String("dataset", "", "YAML dataset snapshot (zone grids and slab areas)")
	configPath := flag.String("config", "", "Optional calibration file (defaults apply when missing)")
	lat := flag.Float64("lat", 0, "Query latitude in degrees")
	lon := flag.Float64("lon", 0, "Query longitude in degrees east")
	trial := flag.Float64("depth", 33, "Trial hypocenter depth in km")
	verbose := flag.Bool("verbose", false, "Log dataset build details")
	flag.Parse()

	// Validate inputs
	if *datasetPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if !*verbose {
		log.SetLevel(log.WarnLevel)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	d, err := dataset.Load(*datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	engine, err := d.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build depth engine: %v", err)
	}

	fmt.Printf("Depth prior at (%.4f, %.4f), trial depth %.1f km\n", *lat, *lon, *trial)
	fmt.Println("==================================================")

	if est, ok := engine.DepthEstimate(*lat, *lon); ok {
		fmt.Printf("Zone cell:         %.1f km +- %.1f (bounds %.1f..%.1f, %s)\n",
			est.Depth, est.Spread, est.Lower, est.Upper, est.Source)
	} else {
		fmt.Println("Zone cell:         no data")
	}

	if est, ok := engine.InterpolatedDepthEstimate(*lat, *lon); ok {
		fmt.Printf("Zone interpolated: %.1f km +- %.1f (bounds %.1f..%.1f, %s)\n",
			est.Depth, est.Spread, est.Lower, est.Upper, est.Source)
	} else {
		fmt.Println("Zone interpolated: no data")
	}

	if depths := engine.SlabDepths(*lat, *lon); len(depths) > 0 {
		for i, d := range depths {
			fmt.Printf("Slab %d:            %.1f km (surface %.1f, bottom %.1f)\n",
				i+1, d.Center, d.Lower, d.Upper)
		}
	} else {
		fmt.Println("Slab:              no slab under this location")
	}

	depth, spread := engine.BayesianDepth(*lat, *lon, *trial)
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Bayesian depth:    %.1f km +- %.1f\n", depth, spread)
}
