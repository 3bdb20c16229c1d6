package demoserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/tempusfetch/internal/tempus"
)

// Swimmer is one registered athlete.
type Swimmer struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Club      string `json:"club"`
	BirthYear int    `json:"birth_year"`
}

// Event is a swim distance and stroke.
type Event struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Result is one swim in a swimmer's event history.
type Result struct {
	Date        string `json:"date"`
	Competition string `json:"competition"`
	Pool        string `json:"pool"`
	Time        string `json:"time"`
}

// Rank is one row of a ranking list.
type Rank struct {
	Rank      int    `json:"rank"`
	SwimmerID int    `json:"swimmer_id"`
	Name      string `json:"name"`
	Club      string `json:"club"`
	BirthYear int    `json:"birth_year"`
	Time      string `json:"time"`
}

var swimmers = []Swimmer{
	{ID: 269397, FirstName: "Victor", LastName: "Johansson", Club: "Simklubben Poseidon", BirthYear: 2008},
	{ID: 269812, FirstName: "Victor", LastName: "Johansson", Club: "Göteborg Sim", BirthYear: 2010},
	{ID: 301122, FirstName: "Åsa", LastName: "Öberg", Club: "Malmö KK", BirthYear: 2007},
	{ID: 288410, FirstName: "Erik", LastName: "Lindqvist", Club: "Södertörns SS", BirthYear: 2009},
	{ID: 277015, FirstName: "Maja", LastName: "Johansson", Club: "Jönköpings SS", BirthYear: 2008},
	{ID: 254660, FirstName: "Olle", LastName: "Näslund", Club: "Simklubben Poseidon", BirthYear: 2006},
}

var events = map[int]string{
	1:  "50 Frisim",
	8:  "100 Frisim",
	9:  "200 Frisim",
	15: "200 Bröstsim",
	22: "100 Fjärilsim",
}

var competitions = []string{"Sum-Sim Linköping", "Stockholm Open", "Malmö Open"}

func findSwimmer(id int) (Swimmer, bool) {
	for _, sw := range swimmers {
		if sw.ID == id {
			return sw, true
		}
	}
	return Swimmer{}, false
}

func eventOf(id int) (Event, bool) {
	name, ok := events[id]
	return Event{ID: id, Name: name}, ok
}

// searchSwimmers matches name fields by case-insensitive prefix and the club
// by substring. Empty fields match everything.
func searchSwimmers(q tempus.SearchQuery) []Swimmer {
	out := []Swimmer{}
	for _, sw := range swimmers {
		if !hasPrefixFold(sw.FirstName, q.FirstName) || !hasPrefixFold(sw.LastName, q.LastName) {
			continue
		}
		if q.Club != "" && !strings.Contains(strings.ToLower(sw.Club), strings.ToLower(q.Club)) {
			continue
		}
		out = append(out, sw)
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(strings.TrimSpace(prefix)))
}

// swimTime is a deterministic time in hundredths for a swimmer in an event.
// Each revision takes a little off every time.
func swimTime(swimmerID, eventID, revision int) int {
	base := 5200 + eventID*611 + swimmerID%997
	return base - revision*7
}

func formatTime(hundredths int) string {
	mins := hundredths / 6000
	sec := (hundredths % 6000) / 100
	hs := hundredths % 100
	if mins == 0 {
		return fmt.Sprintf("%d.%02d", sec, hs)
	}
	return fmt.Sprintf("%d:%02d.%02d", mins, sec, hs)
}

func eventHistory(sw Swimmer, eventID, revision int) []Result {
	best := swimTime(sw.ID, eventID, revision)
	out := make([]Result, 0, len(competitions))
	for i, comp := range competitions {
		out = append(out, Result{
			Date:        fmt.Sprintf("2025-%02d-14", 3+i*3),
			Competition: comp,
			Pool:        "25m",
			Time:        formatTime(best + (len(competitions)-1-i)*45),
		})
	}
	return out
}

// ranking orders every swimmer matching q by time in q.SwimEvent.
func ranking(q tempus.StatsQuery, revision int) []Rank {
	rows := []Rank{}
	type timed struct {
		sw Swimmer
		t  int
	}
	var ts []timed
	for _, sw := range swimmers {
		if q.Club != "" && !strings.Contains(strings.ToLower(sw.Club), strings.ToLower(q.Club)) {
			continue
		}
		ts = append(ts, timed{sw: sw, t: swimTime(sw.ID, q.SwimEvent, revision)})
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].t < ts[j].t })

	for i, t := range ts {
		if q.Limit > 0 && i >= q.Limit {
			break
		}
		rows = append(rows, Rank{
			Rank:      i + 1,
			SwimmerID: t.sw.ID,
			Name:      t.sw.FirstName + " " + t.sw.LastName,
			Club:      t.sw.Club,
			BirthYear: t.sw.BirthYear,
			Time:      formatTime(t.t),
		})
	}
	return rows
}
