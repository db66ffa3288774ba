package main

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/pixapprox/pixapprox/history"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history DBFILE [RUNID]",
	Short: "List recorded runs, or the improvements of one run",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store := history.NewSQLiteStore(args[0])
		if err := store.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Couldn't open history")
		}
		defer store.Close()

		if len(args) == 1 {
			runs, err := store.Runs(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("Couldn't list runs")
			}
			for _, id := range runs {
				best, ok, err := store.Best(ctx, id)
				if err != nil {
					log.Fatal().Err(err).Msg("Couldn't read run")
				}
				if !ok {
					continue
				}
				fmt.Printf("%s  %s  gen %d\n", color.Cyan.Sprint(id), color.Yellow.Sprintf("%12.2f", best.Error), best.Generation)
			}
			return
		}

		snaps, err := store.List(ctx, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't list snapshots")
		}
		for _, s := range snaps {
			fmt.Printf("%s %s %s %s\n",
				color.Cyan.Sprintf("gen %6d", s.Generation),
				color.Yellow.Sprintf("%12.2f", s.Error),
				color.Gray.Sprintf("len %3d", s.CodeSize),
				s.Text)
		}
	},
}
