package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/raysh454/tempusfetch/internal/app"
)

func (rt *runtime) run(cmd *cobra.Command, job app.Job) error {
	rep, err := rt.app.Run(cmd.Context(), job)
	if err != nil {
		reportFailure(rt.opts.Stdout, rep, err)
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	reportSuccess(rt.opts.Stdout, rep)
	return nil
}

func newSearchCommand(rt *runtime) *cobra.Command {
	var first, last, club, category, class, status string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search swimmers by name and write the matches to swimmer_output.json.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.app.Config
			q := cfg.Search
			f := cmd.Flags()
			setIfChanged(f.Changed("first-name"), &q.FirstName, first)
			setIfChanged(f.Changed("last-name"), &q.LastName, last)
			setIfChanged(f.Changed("club"), &q.Club, club)
			setIfChanged(f.Changed("category"), &q.Category, category)
			setIfChanged(f.Changed("class"), &q.Class, class)
			setIfChanged(f.Changed("status"), &q.Status, status)
			return rt.run(cmd, cfg.SearchJob(q))
		},
	}
	f := cmd.Flags()
	f.StringVar(&first, "first-name", "", "first name")
	f.StringVar(&last, "last-name", "", "last name")
	f.StringVar(&club, "club", "", "club filter")
	f.StringVar(&category, "category", "", "category filter")
	f.StringVar(&class, "class", "", "class filter")
	f.StringVar(&status, "status", "", "status filter")
	return cmd
}

func newSwimmerCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "swimmer [swimmer-id]",
		Short: "Fetch one swimmer's details and write them to swimmer_details_output.json.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.app.Config
			id, err := intArg(args, 0, cfg.SwimmerID, "swimmer-id")
			if err != nil {
				return err
			}
			return rt.run(cmd, cfg.SwimmerJob(id))
		},
	}
}

func newEventCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "event [swimmer-id [event-id]]",
		Short: "Fetch a swimmer's history in one event and write it to event_details_output.json.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.app.Config
			swimmer, err := intArg(args, 0, cfg.SwimmerID, "swimmer-id")
			if err != nil {
				return err
			}
			event, err := intArg(args, 1, cfg.EventID, "event-id")
			if err != nil {
				return err
			}
			return rt.run(cmd, cfg.EventJob(swimmer, event))
		},
	}
}

func newStatsCommand(rt *runtime) *cobra.Command {
	var (
		year, class, group, district, club string
		event, pool, fromAge, toAge, limit int
		bestOnly, ageFilter, filterBest    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run a ranking query and write the located records to output.json.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.app.Config
			q := cfg.Stats
			f := cmd.Flags()
			setIfChanged(f.Changed("year"), &q.Year, year)
			setIfChanged(f.Changed("class"), &q.Class, class)
			setIfChanged(f.Changed("event"), &q.SwimEvent, event)
			setIfChanged(f.Changed("pool"), &q.PoolType, pool)
			setIfChanged(f.Changed("group"), &q.CompetitionGroup, group)
			setIfChanged(f.Changed("best-time-only"), &q.BestTimeOnly, bestOnly)
			setIfChanged(f.Changed("from-age"), &q.FromAge, fromAge)
			setIfChanged(f.Changed("to-age"), &q.ToAge, toAge)
			setIfChanged(f.Changed("district"), &q.District, district)
			setIfChanged(f.Changed("club"), &q.Club, club)
			setIfChanged(f.Changed("age-filter"), &q.Filter.AgeFilter, ageFilter)
			setIfChanged(f.Changed("filter-best-time-only"), &q.Filter.BestTimeOnly, filterBest)
			setIfChanged(f.Changed("limit"), &q.Limit, limit)
			return rt.run(cmd, cfg.StatsJob(q))
		},
	}
	f := cmd.Flags()
	f.StringVar(&year, "year", "", "season year, empty for all")
	f.StringVar(&class, "class", "", "swimmer class")
	f.IntVar(&event, "event", 0, "swim event id")
	f.IntVar(&pool, "pool", 0, "pool type")
	f.StringVar(&group, "group", "", "competition group")
	f.BoolVar(&bestOnly, "best-time-only", true, "only each swimmer's best time")
	f.IntVar(&fromAge, "from-age", 0, "minimum age")
	f.IntVar(&toAge, "to-age", 0, "maximum age")
	f.StringVar(&district, "district", "", "district filter")
	f.StringVar(&club, "club", "", "club filter")
	f.BoolVar(&ageFilter, "age-filter", true, "apply the age range")
	f.BoolVar(&filterBest, "filter-best-time-only", true, "filter flag sent alongside best-time-only")
	f.IntVar(&limit, "limit", 0, "number of ranks")
	return cmd
}

func setIfChanged[T any](changed bool, dst *T, v T) {
	if changed {
		*dst = v
	}
}

func intArg(args []string, i, def int, name string) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, args[i])
	}
	return n, nil
}
