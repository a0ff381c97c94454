package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kass/canopy/pkg/config"
	"github.com/kass/canopy/pkg/enrich"
	"github.com/kass/canopy/pkg/logger"
	"github.com/kass/canopy/pkg/osm"
	"github.com/kass/canopy/pkg/tiler"
)

// Intermediate files within the work directory.
const (
	rawStreetsFile = "streets_raw.geojson"
	rawTreesFile   = "trees_raw.geojson"
	streetsFile    = "streets.geojson"
	treesFile      = "trees.geojson"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Street tree density pipeline for web maps",
	Long: `Fetches a city's street network and tree features from OpenStreetMap,
computes a per-street tree-density metric, and republishes the result as
tiled GeoJSON for web-map rendering.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(logLevel)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw street and tree data from the Overpass API",
	Run:   runFetch,
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Join trees to streets and compute density",
	Long: `Reads the raw fetched GeoJSON, interpolates tree rows into points,
joins each tree to its nearest street within the distance threshold, and
writes streets.geojson and trees.geojson with density properties.`,
	Run: runEnrich,
}

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Split a GeoJSON file into geographic grid tiles",
	Run:   runTile,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: fetch, enrich, tile",
	Run:   runAll,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize and verify a tile index",
	Run:   runInspect,
}

var (
	tileInput    string
	tileOutDir   string
	tileGridSize float64
	inspectDir   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level")

	tileCmd.Flags().StringVarP(&tileInput, "input", "i", "", "Input GeoJSON FeatureCollection")
	tileCmd.Flags().StringVarP(&tileOutDir, "out", "o", "tiles", "Output directory")
	tileCmd.Flags().Float64VarP(&tileGridSize, "grid-size", "g", 0.05, "Grid cell size in degrees")
	tileCmd.MarkFlagRequired("input")

	inspectCmd.Flags().StringVarP(&inspectDir, "dir", "d", "tiles", "Tile directory to inspect")

	rootCmd.AddCommand(fetchCmd, enrichCmd, tileCmd, runCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mustConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	return cfg
}

func showProgress() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func runFetch(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	doFetch(cfg)
}

func doFetch(cfg *config.Config) {
	client := osm.NewClient(cfg.Overpass.Endpoint,
		time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second)

	streets, err := client.FetchStreets(cfg.AreaBounds())
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	if err := tiler.SaveCollection(streets, filepath.Join(cfg.WorkDir, rawStreetsFile)); err != nil {
		logger.Log.Fatalf("%v", err)
	}

	trees, err := client.FetchTrees(cfg.AreaBounds())
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	if err := tiler.SaveCollection(trees, filepath.Join(cfg.WorkDir, rawTreesFile)); err != nil {
		logger.Log.Fatalf("%v", err)
	}
	logger.Log.Infof("raw data saved to %s", cfg.WorkDir)
}

func runEnrich(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	doEnrich(cfg)
}

func doEnrich(cfg *config.Config) {
	streets, err := tiler.LoadCollection(filepath.Join(cfg.WorkDir, rawStreetsFile))
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}

	// A city without mapped trees is still a valid dataset.
	trees, err := tiler.LoadCollection(filepath.Join(cfg.WorkDir, rawTreesFile))
	if err != nil {
		logger.Log.Warnf("no tree data (%v), densities will be zero", err)
		trees = nil
	}

	opts := enrich.Options{
		MaxTreeDistance: cfg.Enrich.MaxTreeDistance,
		TreeRowSpacing:  cfg.Enrich.TreeRowSpacing,
		Progress:        showProgress(),
	}
	result, err := enrich.Enrich(streets, trees, opts)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}

	if err := tiler.SaveCollection(result.Streets, filepath.Join(cfg.WorkDir, streetsFile)); err != nil {
		logger.Log.Fatalf("%v", err)
	}
	if err := tiler.SaveCollection(result.Trees, filepath.Join(cfg.WorkDir, treesFile)); err != nil {
		logger.Log.Fatalf("%v", err)
	}
	logger.Log.Infof("enriched data saved to %s", cfg.WorkDir)
}

func runTile(cmd *cobra.Command, args []string) {
	fc, err := tiler.LoadCollection(tileInput)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}

	t := tiler.New(tileGridSize)
	t.Progress = showProgress()
	index, err := t.Run(fc, tileOutDir)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	logger.Log.Infof("created %d tiles in %s", len(index.Tiles), tileOutDir)
}

func runAll(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	start := time.Now()

	doFetch(cfg)
	doEnrich(cfg)

	t := tiler.New(cfg.Tiler.GridSize)
	t.Progress = showProgress()

	streets, err := tiler.LoadCollection(filepath.Join(cfg.WorkDir, streetsFile))
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}
	if _, err := t.Run(streets, filepath.Join(cfg.OutputDir, "streets")); err != nil {
		logger.Log.Fatalf("%v", err)
	}

	trees, err := tiler.LoadCollection(filepath.Join(cfg.WorkDir, treesFile))
	if err != nil || len(trees.Features) == 0 {
		logger.Log.Warnf("no tree features to tile, skipping tree tiles")
	} else if _, err := t.Run(trees, filepath.Join(cfg.OutputDir, "trees")); err != nil {
		logger.Log.Fatalf("%v", err)
	}

	logger.Log.Infof("pipeline finished in %.1fs", time.Since(start).Seconds())
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#50FA7B"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

func runInspect(cmd *cobra.Command, args []string) {
	index, err := tiler.ReadIndex(inspectDir)
	if err != nil {
		logger.Log.Fatalf("%v", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Tile index: %s", inspectDir)))
	fmt.Printf("  grid size: %v°\n", index.GridSize)
	fmt.Printf("  bounds:    %s\n", index.Bounds)
	fmt.Printf("  tiles:     %d\n\n", len(index.Tiles))

	totalFeatures := 0
	var totalKB float64
	missing := 0
	for _, entry := range index.Tiles {
		totalFeatures += entry.Features
		totalKB += entry.SizeKB

		status := okStyle.Render("ok")
		if _, err := os.Stat(filepath.Join(inspectDir, entry.File)); err != nil {
			status = badStyle.Render("missing")
			missing++
		}
		fmt.Printf("  %-20s (%2d,%2d)  %6d features  %8.1f KB  %s\n",
			entry.File, entry.X, entry.Y, entry.Features, entry.SizeKB, status)
	}

	fmt.Printf("\n  total: %d features, %.1f KB (%.1f MB)\n",
		totalFeatures, totalKB, totalKB/1024)
	if missing > 0 {
		fmt.Println(badStyle.Render(fmt.Sprintf("  %d tile files missing on disk", missing)))
		os.Exit(1)
	}
}
