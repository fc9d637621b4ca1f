// orderpipe runs the reference eventz pipeline: a bounded stream of orders
// is counted per type in event-time tumbling windows, joined with per-type
// price statistics, and fanned out to a direct sink and a re-windowed sink.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orderpipe",
		Short: "Event-time windowed order aggregation and join demo",
		Long: `orderpipe generates a bounded stream of orders, counts them per type in
event-time tumbling windows, joins the counts with per-type price
statistics, and delivers the joined tuples to two sinks: one direct, one
re-windowed with a much larger window.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runJob(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Duration("window", time.Second, "tumbling window length for the order count")
	cmd.Flags().Duration("rewindow", 10000*24*time.Hour, "tumbling window length for the re-windowed join results")
	cmd.Flags().Int("orders", 50, "number of orders to generate")
	cmd.Flags().Int("parallelism", 4, "key-partitioned workers for the order count window")
	cmd.Flags().Int("tz-offset", 8, "fixed time zone offset (hours) applied when extracting order timestamps")
	cmd.Flags().Int64("seed", 42, "seed for the order generator")
	cmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("ORDERPIPE")
	viper.AutomaticEnv()

	return cmd
}

type config struct {
	Window      time.Duration `mapstructure:"window"`
	Rewindow    time.Duration `mapstructure:"rewindow"`
	Orders      int           `mapstructure:"orders"`
	Parallelism int           `mapstructure:"parallelism"`
	TZOffset    int           `mapstructure:"tz-offset"`
	Seed        int64         `mapstructure:"seed"`
	MetricsAddr string        `mapstructure:"metrics-addr"`
}
