package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/croxxed/mangamux/internal/update"
)

var checkMetricsAddr string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check all followed works for new chapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}

		if checkMetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(checkMetricsAddr, mux); err != nil {
					a.log.Warn("metrics server stopped", "err", err)
				}
			}()
		}

		works := a.store.FollowedWorks()
		if len(works) == 0 {
			fmt.Println("nothing followed; run 'mangamux import' first")
			return nil
		}

		progress := mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(os.Stdout),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
		bar := progress.New(int64(len(works)),
			mpb.BarStyle().Rbound("]"),
			mpb.PrependDecorators(decor.Name("checking  ")),
			mpb.AppendDecorators(
				decor.CountersNoUnit("%d/%d"),
				decor.Percentage(decor.WCSyncSpace),
			),
		)

		settings := update.Settings{
			NotificationProviders: a.cfg.NotificationProviders,
			RestrictToKnownSource: a.cfg.RestrictToKnownSource,
		}
		report := a.orchestrator.CheckForUpdates(cmd.Context(), works, settings, func(ev update.ProgressEvent) {
			bar.SetCurrent(int64(ev.Current))
		})
		progress.Wait()

		fmt.Printf("checked %d, new chapters %d, errors %d\n",
			report.Checked, report.NewChapters, report.Errors)
		for _, n := range report.Notifications {
			fmt.Printf("  %s: %.5g -> %.5g (next to read: %.5g) via %s\n",
				n.Title, n.OldChapter, n.NewChapter, n.NextChapterToRead, n.Source)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	rootCmd.AddCommand(checkCmd)
}
