package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campusgrid/timetable/app"
	"github.com/campusgrid/timetable/config"
	"github.com/campusgrid/timetable/core/model"
)

var (
	buildName     string
	buildDept     string
	buildYear     string
	buildSemester int
	buildActor    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Create a draft timetable and place the configured sessions",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildName, "name", "", "timetable name")
	buildCmd.Flags().StringVar(&buildDept, "department", "", "department code")
	buildCmd.Flags().StringVar(&buildYear, "year", "", "academic year, e.g. 2025-26")
	buildCmd.Flags().IntVar(&buildSemester, "semester", 0, "semester number")
	buildCmd.Flags().StringVar(&buildActor, "actor", "cli", "acting user")
	for _, f := range []string{"department", "year", "semester"} {
		_ = buildCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	key := model.TimetableKey{Department: buildDept, AcademicYear: buildYear, Semester: buildSemester}
	name := buildName
	if name == "" {
		name = fmt.Sprintf("%s %s S%d", buildDept, buildYear, buildSemester)
	}
	tt, err := svc.Controller.CreateTimetable(ctx, buildActor, name, key)
	if err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}

	placed, unplaced, err := svc.Builder.Build(ctx, tt, cfg.Catalog.SessionRequests())
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	var entries []model.TimetableEntry
	for _, p := range placed {
		entries = append(entries, p.Entries...)
	}
	if len(entries) > 0 {
		if err := svc.Controller.AddEntries(ctx, buildActor, tt.ID, entries); err != nil {
			return fmt.Errorf("add entries: %w", err)
		}
	}

	fmt.Printf("timetable %s: %d sessions placed, %d unplaced\n", tt.ID, len(placed), len(unplaced))
	for _, p := range placed {
		cs := p.Schedule
		fmt.Printf("  %-8s %-10s %s %s room %s (penalty %d)\n",
			cs.SubjectCode, cs.FacultyID, cs.Day, cs.Window, cs.RoomNumber, p.Penalty)
	}
	for _, u := range unplaced {
		fmt.Printf("  %-8s UNPLACED: %s\n", u.Session.SubjectCode, strings.Join(u.Reasons, "; "))
	}
	return nil
}
