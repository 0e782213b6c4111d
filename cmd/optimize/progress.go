package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/antfarm/config"
)

// evalRow is one line of optimize_log.csv: the colony outcome and the parameters that produced it.
type evalRow struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	SurvivalSec float64 `csv:"survival_sec"`
	Survivors   float64 `csv:"survivors"`
	Meals       float64 `csv:"meals"`
	Deaths      float64 `csv:"deaths"`
	KnownFood   float64 `csv:"known_food"`
	Quality     float64 `csv:"quality"`

	HungerThreshold float64 `csv:"hunger_threshold"`
	EatRate         float64 `csv:"eat_rate"`
	HungerDecay     float64 `csv:"hunger_decay"`
	GoalDuration    float64 `csv:"goal_duration"`
	VisibleRange    float64 `csv:"visible_range"`
}

// newEvalRow fills a row from a report and the config the evaluation ran with.
func newEvalRow(eval int, fitness float64, rep ColonyReport, cfg *config.Config) evalRow {
	return evalRow{
		Eval:            eval,
		Fitness:         fitness,
		SurvivalSec:     rep.SurvivalSec,
		Survivors:       rep.Survivors,
		Meals:           rep.Meals,
		Deaths:          rep.Deaths,
		KnownFood:       rep.KnownFood,
		Quality:         rep.Quality,
		HungerThreshold: cfg.Foraging.HungerThreshold,
		EatRate:         cfg.Foraging.EatRate,
		HungerDecay:     cfg.Vitals.HungerDecay,
		GoalDuration:    cfg.AI.GoalDuration,
		VisibleRange:    cfg.Colony.VisibleRange,
	}
}

// progressLog appends evaluation rows to a CSV file.
type progressLog struct {
	f             *os.File
	headerWritten bool
}

func newProgressLog(path string) (*progressLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating progress log: %w", err)
	}
	return &progressLog{f: f}, nil
}

// Write appends one row, emitting the header first if needed.
func (p *progressLog) Write(row evalRow) error {
	rows := []evalRow{row}
	if p.headerWritten {
		return gocsv.MarshalWithoutHeaders(rows, p.f)
	}
	if err := gocsv.Marshal(rows, p.f); err != nil {
		return err
	}
	p.headerWritten = true
	return nil
}

func (p *progressLog) Close() error {
	return p.f.Close()
}
