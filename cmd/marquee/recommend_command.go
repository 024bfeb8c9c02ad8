package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/curator"
	"marquee/internal/logging"
	"marquee/internal/services/llm"
	"marquee/internal/services/tmdb"
	"marquee/internal/textutil"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var curatorID string
	var moods []string
	var previous []string
	var refine string
	var minYear int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Run a one-shot curator session from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			completer := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				Temperature:    cfg.LLM.Temperature,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
			var searcher tmdb.Searcher
			if cfg.TMDBConfigured() {
				client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Region)
				if err != nil {
					return fmt.Errorf("tmdb client: %w", err)
				}
				searcher = client
			}

			orchestrator := curator.NewOrchestrator(
				completer,
				curator.NewEnricher(searcher, logging.NewNop()),
				curator.Settings{
					LineupSize:        cfg.Curator.LineupSize,
					AlternativesMin:   cfg.Curator.AlternativesMin,
					AlternativesMax:   cfg.Curator.AlternativesMax,
					BanListPromptCap:  cfg.Curator.BanListPromptCap,
					PreviousTitlesCap: cfg.Curator.PreviousTitlesCap,
					Thresholds: curator.Thresholds{
						Rating:     cfg.Curator.RatingThreshold,
						Popularity: cfg.Curator.PopularityMin,
						Momentum:   cfg.Curator.MomentumMin,
					},
				},
				logging.NewNop(),
			)

			selections := make([]curator.ContextSelection, 0, len(moods))
			for _, label := range moods {
				selections = append(selections, curator.ContextSelection{Label: label, Category: "mood"})
			}

			resp, err := orchestrator.Run(cmd.Context(), curator.SessionInput{
				CuratorID:      curatorID,
				Selected:       selections,
				PreviousTitles: previous,
				RefinePreset:   refine,
				MinYear:        minYear,
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", resp.Curator.Emoji, resp.Curator.Name)
			if resp.Primary == nil {
				fmt.Fprintln(out, "No picks found. Try again or loosen the mood.")
				return nil
			}

			rows := [][]string{candidateRow("primary", *resp.Primary)}
			for _, alt := range resp.Alternatives {
				rows = append(rows, candidateRow("alternative", alt))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ROLE", "TITLE", "YEAR", "RATING", "GENRES"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			if resp.CuratorNote != "" {
				fmt.Fprintf(out, "\n%q\n", resp.CuratorNote)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&curatorID, "curator", "", "Curator persona id (see `marquee curators`)")
	cmd.Flags().StringArrayVar(&moods, "mood", nil, "Mood label, repeatable")
	cmd.Flags().StringSliceVar(&previous, "previous", nil, "Titles to avoid repeating")
	cmd.Flags().StringVar(&refine, "refine", "", "Refinement preset (more-fun, darker, more-mainstream, more-indie, only-newer, surprise)")
	cmd.Flags().IntVar(&minYear, "min-year", 0, "Tighten the persona's minimum release year")
	_ = cmd.MarkFlagRequired("curator")
	return cmd
}

func candidateRow(role string, c curator.Candidate) []string {
	year := ""
	if c.Year > 0 {
		year = strconv.Itoa(c.Year)
	}
	rating := ""
	if c.Rating > 0 {
		rating = strconv.FormatFloat(c.Rating, 'f', 1, 64)
	}
	return []string{
		role,
		textutil.DisplayTitle(c.Title),
		year,
		rating,
		strings.Join(c.GenreNames(), ", "),
	}
}
