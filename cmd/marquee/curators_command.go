package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/mood"
	"marquee/internal/persona"
)

func newCuratorsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "curators",
		Short: "List the available curator personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			all := persona.All()
			if ctx.jsonOutput() {
				type entry struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Emoji   string `json:"emoji"`
					Band    string `json:"taste_band"`
					MinYear int    `json:"min_year"`
					MaxYear int    `json:"max_year,omitempty"`
					Bias    string `json:"bias"`
				}
				entries := make([]entry, 0, len(all))
				for _, p := range all {
					entries = append(entries, entry{
						ID:      p.ID,
						Name:    p.Name,
						Emoji:   p.Emoji,
						Band:    string(p.Band),
						MinYear: p.MinYear,
						MaxYear: p.MaxYear,
						Bias:    p.Bias,
					})
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"curators":  entries,
					"mood_keys": mood.Keys(),
				})
			}

			rows := make([][]string, 0, len(all))
			for _, p := range all {
				window := strconv.Itoa(p.MinYear) + "+"
				if p.MaxYear > 0 {
					window = fmt.Sprintf("%d-%d", p.MinYear, p.MaxYear)
				}
				rows = append(rows, []string{p.Emoji + " " + p.Name, p.ID, string(p.Band), window, p.Bias})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"CURATOR", "ID", "BAND", "YEARS", "BIAS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
