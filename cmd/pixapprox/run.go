package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gookit/color"
	"github.com/pixapprox/pixapprox/model"
	"github.com/pixapprox/pixapprox/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	imageFlag       string
	outputFlag      string
	seedFlag        int64
	generationsFlag int
	populationFlag  int
	nbestFlag       int
	elitesFlag      int
	mutationsFlag   int
	workersFlag     int
	metricFlag      string
	scaleFlag       int
	patienceFlag    int
	cacheFlag       int
	cacheKindFlag   string
	historyFlag     string
	historyPathFlag string
	resumeFlag      string
	runIDFlag       string
	quietFlag       bool
	logProgressFlag bool
	everyFlag       int
)

var runCmd = &cobra.Command{
	Use:   "run [RUNFILE]",
	Short: "Evolve a program approximating an image",
	Long: "Evolve a program approximating an image. Settings come from the TOML\n" +
		"RUNFILE when given; flags override the file.",
	Args: cobra.MaximumNArgs(1),
	Run:  runCommand,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&imageFlag, "image", "", "Goal image (png, jpeg, gif, bmp, tiff or webp)")
	f.StringVarP(&outputFlag, "output", "o", "", "Directory receiving one sub-directory per run")
	f.Int64Var(&seedFlag, "seed", 0, "Random seed (0 picks one from the clock)")
	f.IntVar(&generationsFlag, "generations", 0, "Number of generations")
	f.IntVar(&populationFlag, "population", 0, "Population size")
	f.IntVar(&nbestFlag, "nbest", 0, "Number of parents kept each generation")
	f.IntVar(&elitesFlag, "elites", 0, "Number of best programs copied unmutated")
	f.IntVar(&mutationsFlag, "mutations", 0, "Mutations applied to every child")
	f.IntVar(&workersFlag, "workers", 0, "Evaluation workers (0 uses every CPU)")
	f.StringVar(&metricFlag, "metric", "", "Error metric (perceptual, baseline)")
	f.IntVar(&scaleFlag, "scale", 0, "Shrink the goal image by this factor")
	f.IntVar(&patienceFlag, "patience", 0, "Stop after this many generations without improvement")
	f.IntVar(&cacheFlag, "cache", 0, "Fitness cache entries (0 disables)")
	f.StringVar(&cacheKindFlag, "cache-kind", "", "Fitness cache kind (lru, memory)")
	f.StringVar(&historyFlag, "history", "", "History backend (memory, sqlite)")
	f.StringVar(&historyPathFlag, "history-path", "", "SQLite file for the sqlite history backend")
	f.StringVar(&resumeFlag, "resume", "", "Continue from a checkpoint file")
	f.StringVar(&runIDFlag, "run-id", "", "Name of the run (defaults to a fresh UUID)")
	f.BoolVarP(&quietFlag, "quiet", "q", false, "Don't print per-generation progress")
	f.BoolVar(&logProgressFlag, "log-progress", false, "Report progress as log events instead of colored lines")
	f.IntVar(&everyFlag, "every", 1, "Print progress every N generations (improvements are always printed)")
}

// loadSpec reads the run file, if any, and applies the flags the user set.
func loadSpec(cmd *cobra.Command, args []string) (*model.Spec, error) {
	spec := &model.Spec{}
	if len(args) == 1 {
		var err error
		spec, err = model.LoadSpecFromFile(args[0])
		if err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("image") {
		spec.Run.Image = imageFlag
	}
	if f.Changed("output") {
		spec.Run.Output = outputFlag
	}
	if f.Changed("seed") {
		spec.Run.Seed = seedFlag
	}
	if f.Changed("generations") {
		spec.Run.Generations = generationsFlag
	}
	if f.Changed("metric") {
		spec.Run.Metric = metricFlag
	}
	if f.Changed("scale") {
		spec.Run.Scale = scaleFlag
	}
	if f.Changed("patience") {
		spec.Run.Patience = patienceFlag
	}
	if f.Changed("population") {
		spec.Population.Size = populationFlag
	}
	if f.Changed("nbest") {
		spec.Population.NBest = nbestFlag
	}
	if f.Changed("elites") {
		spec.Population.Elites = elitesFlag
	}
	if f.Changed("mutations") {
		spec.Population.Mutations = mutationsFlag
	}
	if f.Changed("workers") {
		spec.Population.Workers = workersFlag
	}
	if f.Changed("cache") {
		spec.Cache.Size = cacheFlag
	}
	if f.Changed("cache-kind") {
		spec.Cache.Kind = cacheKindFlag
	}
	if f.Changed("history") {
		spec.History.Backend = historyFlag
	}
	if f.Changed("history-path") {
		spec.History.Path = historyPathFlag
	}
	if spec.Run.Seed == 0 {
		spec.Run.Seed = time.Now().UnixNano()
		log.Debug().Int64("seed", spec.Run.Seed).Msg("seed picked from the clock")
	}
	return spec, nil
}

func runCommand(cmd *cobra.Command, args []string) {
	spec, err := loadSpec(cmd, args)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load run file")
	}
	opts, err := session.OptionsFromSpec(spec)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid run configuration")
	}
	opts.Resume = resumeFlag
	opts.RunID = runIDFlag
	switch {
	case quietFlag:
		opts.Reporter = &model.SilentReporter{}
	case logProgressFlag:
		opts.Reporter = &model.LogReporter{}
	default:
		opts.Reporter = &model.ColorReporter{Writer: os.Stderr, Every: everyFlag}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := session.Open(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't start run")
	}
	defer s.Close()

	fmt.Fprintln(os.Stderr, color.Cyan.Sprintf("Evolving %dx%d image, run %s...", s.Goal.Width, s.Goal.Height, s.RunID))

	result, err := s.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error during evolution")
	}

	fmt.Fprint(os.Stderr, model.FormatBest(result))
	fmt.Fprint(os.Stderr, model.FormatStatistics(result))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, color.Green.Sprintf("Snapshots written to %s", s.Dir))
}
