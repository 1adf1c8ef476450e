package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loom-downtime-backend/config"
	"loom-downtime-backend/internal/bucket"
	"loom-downtime-backend/internal/db"
	"loom-downtime-backend/internal/logging"
	"loom-downtime-backend/internal/parse"
	"loom-downtime-backend/internal/report"
	"loom-downtime-backend/internal/shift"
	"loom-downtime-backend/internal/snapshot"
	"loom-downtime-backend/internal/store"
)

// reportRange is the day range and shift selection common to every report.
type reportRange struct {
	since  string
	until  string
	shifts []int
	now    time.Time
}

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Print running and stopped time tables",
	GroupID: defaultCommandGroup.ID,
}

var reportMachinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "Print running or stopped hours per machine and day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Prevent showing usage after validation
		cmd.SilenceUsage = true

		v := vipers[cmd]
		mode, err := report.ParseMode(v.GetString("mode"))
		if err != nil {
			return err
		}
		st, loc, err := openStore()
		if err != nil {
			return err
		}
		return runMachineReport(cmd.Context(), os.Stdout, st, loc, rangeFrom(v, loc), v.GetIntSlice("machines"), mode)
	},
}

var reportReasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "Print stopped hours of one machine per reason and day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Prevent showing usage after validation
		cmd.SilenceUsage = true

		v := vipers[cmd]
		st, loc, err := openStore()
		if err != nil {
			return err
		}
		return runReasonReport(cmd.Context(), os.Stdout, st, loc, rangeFrom(v, loc), v.GetInt("machine"), v.GetIntSlice("reasons"))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportMachinesCmd, reportReasonsCmd)

	for _, c := range []*cobra.Command{reportMachinesCmd, reportReasonsCmd} {
		c.Flags().String("since", "", "First day of the report (YYYY-MM-DD, default today)")
		c.Flags().String("until", "", "Last day of the report (YYYY-MM-DD, default since)")
		c.Flags().IntSlice("shifts", []int{}, "Shifts to include (default all)")
	}
	reportMachinesCmd.Flags().IntSlice("machines", []int{}, "Machine codes to include (default all)")
	reportMachinesCmd.Flags().String("mode", "running", "running or stopped")
	reportReasonsCmd.Flags().Int("machine", 0, "Machine code")
	reportReasonsCmd.MarkFlagRequired("machine")
	reportReasonsCmd.Flags().IntSlice("reasons", []int{}, "Reason codes to include (default every defined and observed reason)")
}

func rangeFrom(v *viper.Viper, loc *time.Location) reportRange {
	return reportRange{
		since:  v.GetString("since"),
		until:  v.GetString("until"),
		shifts: v.GetIntSlice("shifts"),
		now:    time.Now().In(loc),
	}
}

func openStore() (store.Store, *time.Location, error) {
	loc, err := time.LoadLocation(viper.GetString("plant.timezone"))
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(os.Stderr, "warn", toolName)
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver: viper.GetString("database.driver"),
		DSN:    viper.GetString("database.dsn"),
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewGormStore(gormDB), loc, nil
}

// days resolves the range; empty bounds default to today and since.
func (r reportRange) days(loc *time.Location) ([]time.Time, error) {
	since := r.now
	if r.since != "" {
		d, err := parse.Date(r.since, loc)
		if err != nil {
			return nil, err
		}
		since = d
	}
	until := since
	if r.until != "" {
		d, err := parse.Date(r.until, loc)
		if err != nil {
			return nil, err
		}
		until = d
	}
	days := report.Days(since, until)
	if len(days) == 0 {
		return nil, fmt.Errorf("until %s is before since %s", r.until, r.since)
	}
	return days, nil
}

func (r reportRange) engine(cal *shift.Calendar) *bucket.Engine {
	shifts := r.shifts
	if len(shifts) == 0 {
		shifts = []int{1, 2, 3}
	}
	return bucket.NewEngine(cal, shifts, r.now)
}

func runMachineReport(ctx context.Context, out io.Writer, st store.Store, loc *time.Location, r reportRange, machines []int, mode report.Mode) error {
	days, err := r.days(loc)
	if err != nil {
		return err
	}
	filter := make([]int64, 0, len(machines))
	for _, m := range machines {
		filter = append(filter, int64(m))
	}
	snap, err := snapshot.Load(ctx, st, loc, store.EventFilter{Machines: filter, Until: days[len(days)-1].AddDate(0, 0, 1)})
	if err != nil {
		return err
	}

	m := report.MachineMatrix(r.engine(snap.Calendar), days, snap.SelectMachines(machines), snap.Logs, mode)
	return writeMatrix(out, "machine", m)
}

func runReasonReport(ctx context.Context, out io.Writer, st store.Store, loc *time.Location, r reportRange, machine int, reasons []int) error {
	days, err := r.days(loc)
	if err != nil {
		return err
	}
	snap, err := snapshot.Load(ctx, st, loc, store.EventFilter{Machines: []int64{int64(machine)}, Until: days[len(days)-1].AddDate(0, 0, 1)})
	if err != nil {
		return err
	}
	if len(snap.SelectMachines([]int{machine})) == 0 {
		return fmt.Errorf("machine %d: %w", machine, store.ErrMachineNotFound)
	}

	m := report.ReasonMatrix(r.engine(snap.Calendar), days, snap.Logs[machine], snap.Reasons, reasons)
	return writeMatrix(out, "reason", m)
}

func writeMatrix(out io.Writer, subject string, m report.Matrix) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprint(w, subject)
	for _, d := range m.Labels {
		fmt.Fprintf(w, "\t%s", d)
	}
	fmt.Fprintln(w, "\ttotal")

	for _, row := range m.Rows {
		label := row.Label
		if label == "" {
			label = fmt.Sprint(row.Key)
		}
		fmt.Fprint(w, label)
		for _, v := range row.Cells {
			fmt.Fprintf(w, "\t%s", hours(v))
		}
		fmt.Fprintf(w, "\t%s\n", hours(row.Total))
	}

	fmt.Fprint(w, "total")
	for _, v := range m.ColumnTotals {
		fmt.Fprintf(w, "\t%s", hours(v))
	}
	fmt.Fprintf(w, "\t%s\n", hours(m.GrandTotal))
	return w.Flush()
}

// hours formats minutes as H:MM.
func hours(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
