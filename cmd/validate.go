package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusgrid/timetable/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, catalog and constraint set",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cat, _, err := cfg.Catalog.BuildCatalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	for _, s := range cfg.Catalog.Sessions {
		if _, err := cat.Subject(s.Subject); err != nil {
			return fmt.Errorf("session %s: %w", s.Subject, err)
		}
		for _, g := range s.Groups {
			if _, err := cat.Group(g); err != nil {
				return fmt.Errorf("session %s: %w", s.Subject, err)
			}
		}
	}
	fmt.Printf("ok: %d subjects, %d rooms, %d slots, %d constraints, %d sessions\n",
		len(cfg.Catalog.Subjects), len(cfg.Catalog.Rooms), len(cfg.Catalog.Slots),
		len(cfg.Constraints), len(cfg.Catalog.Sessions))
	return nil
}
