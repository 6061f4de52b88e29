package main

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/trendboard/internal/errmsg"
	"github.com/JonMunkholm/trendboard/internal/format"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numStyle     = cellStyle.Align(lipgloss.Right)
	deltaStyle   = numStyle.Foreground(lipgloss.Color("42"))
	summaryStyle = cellStyle.Foreground(lipgloss.Color("245")).Width(60)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Column positions in the terminal table.
const (
	colRank = iota
	colName
	colStars
	colTotal
	colCreated
	colSummary
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the trending repositories as a terminal table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			location, _ := cmd.Flags().GetString("source")
			if location == "" {
				location = defaultLocation(cfg)
			}
			summaries, _ := cmd.Flags().GetBool("summaries")
			lang, _ := cmd.Flags().GetString("lang")

			st, err := fetchState(cmd.Context(), location, cfg)
			if err != nil {
				return err
			}
			if st.Phase == view.PhaseError {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+st.Err))
				if hint := errorHint(st.Err); hint != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), hint)
				}
				return fmt.Errorf("fetch %s failed", location)
			}

			fmt.Fprintln(cmd.OutOrStdout(), repoTable(st, format.FromAcceptLanguage(lang), summaries))
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "CSV URL or file path (default: SOURCE_LOCATION)")
	cmd.Flags().Bool("summaries", false, "Include the summary column")
	cmd.Flags().String("lang", envLang(), "Locale for dates and counts, as an Accept-Language value")
	return cmd
}

// errorHint is the coded hint for a fetch error, or "" when the error
// matches no known pattern and the raw message is all there is to say.
func errorHint(msg string) string {
	err := errors.New(msg)
	if !errmsg.IsUserFacing(err) {
		return ""
	}
	return errmsg.FormatUserError(err)
}

// repoTable lays out the records the same way the web table does.
func repoTable(st view.State, loc format.Locale, summaries bool) string {
	headers := []string{"#", "Repository", "Stars Gained", "Total Stars", "Created"}
	if summaries {
		headers = append(headers, "Summary")
	}

	rows := make([][]string, 0, len(st.Entries))
	for _, e := range st.Entries {
		row := []string{
			fmt.Sprint(e.Rank),
			e.Name,
			"+" + loc.Count(e.Stars),
			loc.Count(e.CurrentStars),
			loc.Date(e.CreatedAt),
		}
		if summaries {
			row = append(row, e.Summary)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == colStars:
				return deltaStyle
			case col == colRank || col == colTotal:
				return numStyle
			case col == colSummary:
				return summaryStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}
