// Command logreport summarizes the model attempt log into an xlsx workbook.
//
// Usage:
//
//	logreport summarize --log model_logs.txt --out report.xlsx
//	logreport export --log model_logs.txt
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"docextract/internal/csvexport"
	"docextract/internal/report"
)

var (
	logPath string
	outPath string
	csvPath string
)

var rootCmd = &cobra.Command{
	Use:           "logreport",
	Short:         "Operator reports over the model attempt log",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Write per-model success, failure, latency, and token totals to xlsx",
	Long: `Reads the JSON-lines attempt log and writes a workbook with two sheets:

  Summary   one row per model
  Attempts  one row per logged attempt

Lines that do not decode are skipped and counted.

Examples:
  logreport summarize
  logreport summarize --log /var/lib/docextract/model_logs.txt --out weekly.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := report.SummarizeFile(logPath, outPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d records across %d models (%d lines skipped)\n",
			outPath, stats.Records, stats.Models, stats.Skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every logged attempt as CSV",
	Long: `Writes one CSV row per attempt, with the model's JSON response in the last column.
Without --out the file is named model_attempts_YYYY-MM-DD.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := csvPath
		if dst == "" {
			dst = csvexport.BuildFilename("model attempts", time.Now())
		}
		stats, err := report.ExportCSV(logPath, dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d records (%d lines skipped)\n", dst, stats.Records, stats.Skipped)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVarP(&logPath, "log", "l", "model_logs.txt", "attempt log to read")
	summarizeCmd.Flags().StringVarP(&outPath, "out", "o", "report.xlsx", "workbook to write")
	exportCmd.Flags().StringVarP(&logPath, "log", "l", "model_logs.txt", "attempt log to read")
	exportCmd.Flags().StringVarP(&csvPath, "out", "o", "", "csv file to write")
	rootCmd.AddCommand(summarizeCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
