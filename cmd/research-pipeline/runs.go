package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-pipeline/internal/checkpoint"
	"github.com/pdiddy/research-pipeline/internal/report"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored pipeline runs",
	Long: `Runs lists and shows pipeline runs persisted in the checkpoint store.
Each completed run stores its final report keyed by run ID.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run's report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.PersistentFlags().String("checkpoint-dir", "", "directory of the run checkpoint database (default \"checkpoints\")")
	runsShowCmd.Flags().String("format", "text", "report format: json, yaml, text, or html")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore(cmd *cobra.Command) (*checkpoint.Store, error) {
	dir, _ := cmd.Flags().GetString("checkpoint-dir")
	if dir == "" {
		dir = viper.GetString("checkpoint.dir")
	}
	return checkpoint.Open(types.CheckpointConfig{Enabled: true, Dir: dir})
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-40s  %-5s  %-9s  %s\n",
		"Run ID", "Topic", "Iter", "Converged", "Updated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range runs {
		topic := r.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-40s  %-5d  %-9v  %s\n",
			r.RunID, topic, r.Iterations, r.Converged, r.UpdatedAt)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.LoadReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return report.Render(os.Stdout, stored, format)
}
