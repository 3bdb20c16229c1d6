package tempus

// SearchQuery is the swimmer search form. Empty fields are sent as "".
type SearchQuery struct {
	FirstName string `json:"first_name" mapstructure:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name"`
	Club      string `json:"club" mapstructure:"club"`
	Category  string `json:"category" mapstructure:"category"`
	Class     string `json:"class" mapstructure:"class"`
	Status    string `json:"status" mapstructure:"status"`
}

// StatsFilter mirrors the nested filter object of the statistics form.
type StatsFilter struct {
	AgeFilter    bool `json:"age_filter" mapstructure:"age_filter"`
	BestTimeOnly bool `json:"best_time_only" mapstructure:"best_time_only"`
}

// StatsQuery is the statistics ranking form.
type StatsQuery struct {
	Year             string      `json:"year" mapstructure:"year"`
	Class            string      `json:"class" mapstructure:"class"`
	SwimEvent        int         `json:"swim_event" mapstructure:"swim_event"`
	PoolType         int         `json:"pool_type" mapstructure:"pool_type"`
	CompetitionGroup string      `json:"competition_group" mapstructure:"competition_group"`
	BestTimeOnly     bool        `json:"best_time_only" mapstructure:"best_time_only"`
	FromAge          int         `json:"from_age" mapstructure:"from_age"`
	ToAge            int         `json:"to_age" mapstructure:"to_age"`
	District         string      `json:"district" mapstructure:"district"`
	Club             string      `json:"club" mapstructure:"club"`
	Filter           StatsFilter `json:"filter" mapstructure:"filter"`
	Limit            int         `json:"limit" mapstructure:"limit"`
}

// DefaultSearchQuery is the search the tool runs when given no names.
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{FirstName: "Victor", LastName: "Johansson"}
}

// DefaultStatsQuery is the top-20 ranking for event 8 in pool type 1, best
// times only, ages 13 to 99.
func DefaultStatsQuery() StatsQuery {
	return StatsQuery{
		Class:        "1",
		SwimEvent:    8,
		PoolType:     1,
		BestTimeOnly: true,
		FromAge:      13,
		ToAge:        99,
		Filter: StatsFilter{
			AgeFilter:    true,
			BestTimeOnly: true,
		},
		Limit: 20,
	}
}

const (
	DefaultSwimmerID = 269397
	DefaultEventID   = 15
)
