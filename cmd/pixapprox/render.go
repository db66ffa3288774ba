package main

import (
	"strings"

	"github.com/pixapprox/pixapprox/picture"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	widthFlag   int
	heightFlag  int
	renderOut   string
	compareFlag string
)

var renderCmd = &cobra.Command{
	Use:   "render EXPR",
	Short: "Render a program to a PNG file",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := parseProgram(strings.Join(args, " "))
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't parse program")
		}
		w, h := widthFlag, heightFlag
		var goal *picture.Gray
		if compareFlag != "" {
			goal, err = picture.Load(compareFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Couldn't load comparison image")
			}
			w, h = goal.Width, goal.Height
		}
		img := picture.Render(p, w, h)
		if goal != nil {
			log.Info().
				Float64("perceptual", picture.PerceptualError(goal, img)).
				Uint64("baseline", picture.BaselineError(goal, img)).
				Msg("error against comparison image")
			img = picture.SideBySide(goal, img)
		}
		if err := picture.SavePNG(renderOut, img); err != nil {
			log.Fatal().Err(err).Msg("Couldn't write image")
		}
		log.Info().Str("file", renderOut).Int("width", img.Width).Int("height", img.Height).Msg("rendered")
	},
}

func init() {
	renderCmd.Flags().IntVar(&widthFlag, "width", 256, "Image width")
	renderCmd.Flags().IntVar(&heightFlag, "height", 256, "Image height")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "render.png", "Output PNG file")
	renderCmd.Flags().StringVar(&compareFlag, "compare", "", "Goal image to score against; sets the size and writes a side-by-side image")
}
