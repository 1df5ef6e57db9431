package main

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/acsim/arena"
	"github.com/plus3/acsim/ecs"
)

type Report struct {
	// Configuration
	Garage  string
	Formula string
	Rules   arena.GameRules
	Runs    int

	// Results
	Survivors  map[string]int
	NoSurvivor int
	Rounds     int
	Draws      int
	Frames     uint64
	TotalTime  time.Duration
	RunTime    Stats

	// Last run
	Systems       []ecs.SystemStats
	Storage       *ecs.StorageStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Tally counts how often a pilot survived.
type Tally struct {
	Name  string
	Count int
}

// Record adds one finished run.
func (r *Report) Record(result arena.Result) {
	if r.Survivors == nil {
		r.Survivors = make(map[string]int)
	}
	if result.HasSurvivor {
		r.Survivors[result.Survivor]++
	} else {
		r.NoSurvivor++
	}
	r.Rounds += result.Rounds
	for _, round := range result.History {
		if round.Draw {
			r.Draws++
		}
	}
}

// Tallies returns the survivor counts, most frequent first.
func (r *Report) Tallies() []Tally {
	tallies := make([]Tally, 0, len(r.Survivors))
	for name, count := range r.Survivors {
		tallies = append(tallies, Tally{Name: name, Count: count})
	}
	slices.SortFunc(tallies, func(a, b Tally) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return tallies
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Arena Report

## Configuration
- **Garage:** {{.Garage}}
- **Formula:** {{.Formula}}
- **Rules:** max wins {{.Rules.MaxWins}}, max turns {{.Rules.MaxTurns}}, max rounds {{.Rules.MaxRounds}}, seed {{.Rules.Seed}}
- **Runs:** {{.Runs}}

## Results
{{- range .Tallies}}
- {{.Name}}: {{.Count}}
{{- end}}
{{- if .NoSurvivor}}
- No survivor: {{.NoSurvivor}}
{{- end}}
- **Rounds:** {{.Rounds}} ({{.Draws}} drawn)
- **Total Time:** {{.TotalTime}}
- **Run Time:**
  - **Avg:** {{.RunTime.Avg}}
  - **Min:** {{.RunTime.Min}}
  - **Max:** {{.RunTime.Max}}

## Systems (last run, {{.Frames}} frames)
{{- range .Systems}}
- {{printf "%-22s" .Name}} runs {{.ExecutionCount}}, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{- end}}
{{with .Storage}}
## Storage (last run)
- **Archetypes:** {{.ArchetypeCount}}
- **Entities:** {{.TotalEntityCount}}
- **Singletons:** {{.SingletonCount}} ({{join .SingletonTypes ", "}})
{{- range .ArchetypeBreakdown}}
  - [{{.Components}}]: {{.EntityCount}}
{{- end}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"join": strings.Join,
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return tmpl.Execute(w, r)
}
