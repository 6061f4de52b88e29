package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/trendboard/internal/format"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/JonMunkholm/trendboard/internal/web/templates"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the table to a self-contained HTML file",
		Long: `render fetches the CSV once and writes a static HTML page with the
table. Summaries use <details> elements, so the page works without a server.
If the fetch fails the page carries the error line and the command exits
non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			location, _ := cmd.Flags().GetString("source")
			if location == "" {
				location = defaultLocation(cfg)
			}
			variant, _ := cmd.Flags().GetString("variant")
			if variant != templates.VariantRepo && variant != templates.VariantRaw {
				return fmt.Errorf("unknown variant %q (want %s or %s)", variant, templates.VariantRepo, templates.VariantRaw)
			}
			lang, _ := cmd.Flags().GetString("lang")
			out, _ := cmd.Flags().GetString("out")

			st, err := fetchState(cmd.Context(), location, cfg)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			p := templates.TableParams{ViewID: "static", State: st, Locale: format.FromAcceptLanguage(lang)}
			if err := templates.Document(variant, p, templates.Stylesheet).Render(cmd.Context(), w); err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if st.Phase == view.PhaseError {
				return fmt.Errorf("fetch %s: %s", location, st.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "CSV URL or file path (default: SOURCE_LOCATION)")
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("variant", templates.VariantRepo, "Table variant: repo or raw")
	cmd.Flags().String("lang", envLang(), "Locale for dates and counts, as an Accept-Language value")
	return cmd
}

// envLang converts a POSIX locale like "de_DE.UTF-8" to "de-DE".
func envLang() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
