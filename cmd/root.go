package cmd

import (
	"fmt"
	"os"

	"github.com/bsaid97/go-polygon-stitcher/config"
	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/stitch"
	"github.com/bsaid97/go-polygon-stitcher/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	quiet      bool
	display    bool
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "stitcher",
	Short: "Stitch the shared border of two planning units",
	Long: `The stitcher reconciles two polygon datasets that were digitized independently
on either side of a common border.

Both planning units are clipped to their area of interest. The polygons crossing
the border are rebuilt from snapped boundary lines and handed to the first unit,
and the gaps left in each unit are filled from its original border polygons.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runStitch(cmd, cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "stitcher.yaml", "path to the YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors, without progress display")
	rootCmd.Flags().BoolVarP(&display, "display", "d", false, "terminal display of every pipeline stage")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of workers, overrides the configuration (0 uses every CPU)")

	rootCmd.AddCommand(checkCmd)
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load(".env")
	return config.Load(configPath)
}

func runStitch(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(quiet)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}

	var progress progressDisplay
	switch {
	case quiet:
	case display:
		progress = newStageBoard()
	default:
		progress = newSpinner(os.Stderr)
	}
	var observer pipeline.Observer
	if progress != nil {
		defer progress.Stop()
		observer = progress
	}

	storeOpts := []storage.Option{storage.WithLogger(logger), storage.WithObserver(observer)}
	if cfg.PostGISDSN != "" {
		db, err := storage.OpenPostGIS(cfg.PostGISDSN, cfg.PostGISSRID)
		if err != nil {
			return err
		}
		defer db.Close()
		storeOpts = append(storeOpts, storage.WithPostGIS(db))
	}
	store := storage.NewStore(storeOpts...)

	stitcher := stitch.New(store, store, logger,
		stitch.WithPrecision(geometry.PrecisionModel{Scale: cfg.Precision}),
		stitch.WithCompareTopologicalEquality(cfg.CompareTopologicalEquality),
		stitch.WithStrategy(stitch.Strategy(cfg.Strategy)),
		stitch.WithSnapTolerance(cfg.EffectiveSnapTolerance()),
		stitch.WithSearchMargin(cfg.SnapSearchMargin),
		stitch.WithMinPartArea(cfg.MinPartArea),
		stitch.WithSliverArea(cfg.SliverArea),
		stitch.WithWorkers(cfg.Workers),
		stitch.WithObserver(observer),
	)

	pu1, pu2 := stitch.Unit(cfg.PU1), stitch.Unit(cfg.PU2)
	result, err := stitcher.Run(pu1, pu2)
	if err != nil {
		logger.Error("Stitching failed", zap.Error(err))
		return err
	}

	if progress != nil {
		progress.Stop()
	}
	printSummary(os.Stdout, pu1.Name, pu2.Name, result)

	if cfg.WaitForUserInputAfterCompletion {
		waitForEnter(os.Stdin, os.Stdout)
	}
	return nil
}
