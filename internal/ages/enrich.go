package ages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/legislator-ages/internal/config"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/logger"
	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
	"github.com/pfrederiksen/legislator-ages/internal/wikipedia"
)

// DefaultWorkers bounds concurrent article lookups when Workers is unset.
const DefaultWorkers = 4

// PageSource looks up legislator articles.
type PageSource interface {
	Summary(ctx context.Context, title string) (string, error)
	BirthDate(ctx context.Context, title string) (string, error)
}

// Enricher computes ages for records.
type Enricher struct {
	Pages         PageSource
	Clock         wikidate.Clock
	RetirementAge int
	Workers       int
}

// Report summarizes one enrichment run.
type Report struct {
	Source        string         `json:"source"`
	Strategy      string         `json:"strategy"`
	AsOf          string         `json:"as_of"`
	Total         int            `json:"total"`
	WithAge       int            `json:"with_age"`
	Failed        int            `json:"failed"`
	Dialects      map[string]int `json:"dialects,omitempty"`
	Discrepancies []Discrepancy  `json:"discrepancies,omitempty"`
}

// Enrich fills BirthDate, Age, DeclaredAge, Dialect, AgeSource and Error on
// every record according to src's strategy. Per-record failures are stored on
// the record; the returned error is only set for a bad configuration or a
// canceled context.
func (e *Enricher) Enrich(ctx context.Context, records []*legislator.Record, src config.Source) (*Report, error) {
	if !src.AgeStrategy.Valid() {
		return nil, fmt.Errorf("source %s: unknown age strategy %q", src.Key, src.AgeStrategy)
	}
	if src.AgeStrategy.NeedsPages() && e.Pages == nil {
		return nil, fmt.Errorf("source %s: strategy %s needs a page source", src.Key, src.AgeStrategy)
	}

	now := e.now()
	start := time.Now()
	log := logger.Default().With(logger.Fields{"source": src.Key, "strategy": string(src.AgeStrategy)})

	lookup := func(ctx context.Context, r *legislator.Record) error {
		switch src.AgeStrategy {
		case config.StrategyBornColumn:
			return e.fromBornColumn(r, src.BornColumn, now)
		case config.StrategyRetirementColumn:
			return e.fromRetirementColumn(r, src.RetirementColumn, now)
		case config.StrategyPageSummary:
			return e.fromSummary(ctx, r, src.LinkColumn, now)
		default:
			return e.fromInfobox(ctx, r, src.LinkColumn, now)
		}
	}

	workers := 1
	if src.AgeStrategy.NeedsPages() {
		workers = e.workers()
	}
	err := forEach(ctx, records, workers, func(ctx context.Context, r *legislator.Record) {
		if lerr := lookup(ctx, r); lerr != nil {
			if r.AgeSource == "" {
				r.AgeSource = string(src.AgeStrategy)
			}
			r.SetError(r.AgeSource, lerr)
			logger.IncrCounter("ages.failed")
			log.Warn("Age lookup failed", logger.Fields{"name": r.Name, "error": lerr.Error()})
			return
		}
		logger.IncrCounter("ages.ok")
	})
	logger.RecordTiming("ages.enrich", time.Since(start))

	report := buildReport(records, src, now)
	log.Info("Computed ages", logger.Fields{
		"total":    report.Total,
		"with_age": report.WithAge,
		"failed":   report.Failed,
	})
	return report, err
}

func (e *Enricher) now() time.Time {
	if e.Clock == nil {
		return wikidate.RealClock{}.Now()
	}
	return e.Clock.Now()
}

func (e *Enricher) workers() int {
	if e.Workers < 1 {
		return DefaultWorkers
	}
	return e.Workers
}

func (e *Enricher) retirementAge() int {
	if e.RetirementAge < 1 {
		return wikidate.DefaultRetirementAge
	}
	return e.RetirementAge
}

func (e *Enricher) fromBornColumn(r *legislator.Record, column string, now time.Time) error {
	source := string(config.StrategyBornColumn)
	r.AgeSource = source

	cell, err := cellValue(r.Row, column)
	if err != nil {
		return err
	}

	date, disc, err := wikidate.CompareBornCell(cell, now)
	if err != nil {
		// Cells without a sortable ISO date ("c. 1950") go through the
		// general parser.
		d, dialect, perr := wikidate.ParseWithDialect(cell)
		if perr != nil {
			return perr
		}
		age, _ := wikidate.AgeFromDate(d, now)
		r.SetAge(d, age, dialect.String(), source)
		if declared, ok := wikidate.DeclaredAge(cell); ok {
			r.DeclaredAge = &declared
		}
		return nil
	}

	age, _ := wikidate.AgeFromDate(date, now)
	r.SetAge(date, age, "", source)
	if disc != nil {
		declared := disc.Declared
		r.DeclaredAge = &declared
	}
	return nil
}

func (e *Enricher) fromRetirementColumn(r *legislator.Record, column string, now time.Time) error {
	source := string(config.StrategyRetirementColumn)
	r.AgeSource = source

	cell, err := cellValue(r.Row, column)
	if err != nil {
		return err
	}
	age, err := wikidate.AgeFromMandatoryRetirement(cell, now, e.retirementAge())
	if err != nil {
		return err
	}
	r.SetEstimatedAge(age, source)
	return nil
}

func (e *Enricher) fromSummary(ctx context.Context, r *legislator.Record, linkColumn string, now time.Time) error {
	source := string(config.StrategyPageSummary)
	r.AgeSource = source

	title, err := linkTitle(r.Row, linkColumn)
	if err != nil {
		return err
	}
	summary, err := e.Pages.Summary(ctx, title)
	if err != nil {
		return fmt.Errorf("loading summary of %s: %w", title, err)
	}
	date, err := wikidate.ParseBornPhrase(summary)
	if err != nil {
		return fmt.Errorf("reading birth date of %s: %w", title, err)
	}
	age, _ := wikidate.AgeFromDate(date, now)
	r.SetAge(date, age, wikidate.FreeText.String(), source)
	return nil
}

func (e *Enricher) fromInfobox(ctx context.Context, r *legislator.Record, linkColumn string, now time.Time) error {
	source := string(config.StrategyInfobox)
	r.AgeSource = source

	title, err := linkTitle(r.Row, linkColumn)
	if err != nil {
		return err
	}
	raw, err := e.Pages.BirthDate(ctx, title)
	if errors.Is(err, wikipedia.ErrFieldMissing) {
		logger.Debug("No infobox birth date, reading summary", logger.Fields{"title": title})
		return e.fromSummary(ctx, r, linkColumn, now)
	}
	if err != nil {
		return fmt.Errorf("loading infobox of %s: %w", title, err)
	}

	date, dialect, err := wikidate.ParseWithDialect(raw)
	if err != nil {
		return fmt.Errorf("reading birth date of %s: %w", title, err)
	}
	age, _ := wikidate.AgeFromDate(date, now)
	r.SetAge(date, age, dialect.String(), source)
	return nil
}

func cellValue(row legislator.Row, column string) (string, error) {
	col, err := legislator.ResolveColumn(columnsOf(row), column)
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(row[col])
	if v == "" {
		return "", fmt.Errorf("column %q is empty", col)
	}
	return v, nil
}

func linkTitle(row legislator.Row, column string) (string, error) {
	col, err := legislator.ResolveColumn(columnsOf(row), column)
	if err != nil {
		return "", err
	}
	link := row.Link(col)
	if link == "" {
		return "", fmt.Errorf("column %q has no link", col)
	}
	return wikipedia.TitleFromLink(link)
}

// columnsOf returns the row's column names without link columns, sorted.
func columnsOf(row legislator.Row) []string {
	cols := make([]string, 0, len(row))
	for k := range row {
		if strings.HasSuffix(k, legislator.LinkSuffix) {
			continue
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// forEach runs fn over records with at most workers goroutines. Records not
// yet started when ctx is canceled are marked with the context error.
func forEach(ctx context.Context, records []*legislator.Record, workers int, fn func(context.Context, *legislator.Record)) error {
	jobs := make(chan *legislator.Record)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				fn(ctx, r)
			}
		}()
	}

	var err error
	for i, r := range records {
		if err = ctx.Err(); err == nil {
			select {
			case jobs <- r:
				continue
			case <-ctx.Done():
				err = ctx.Err()
			}
		}
		for _, rest := range records[i:] {
			rest.SetError(rest.AgeSource, err)
		}
		break
	}
	close(jobs)
	wg.Wait()
	return err
}

func buildReport(records []*legislator.Record, src config.Source, now time.Time) *Report {
	report := &Report{
		Source:        src.Key,
		Strategy:      string(src.AgeStrategy),
		AsOf:          wikidate.DateOf(now).String(),
		Total:         len(records),
		Dialects:      make(map[string]int),
		Discrepancies: Discrepancies(records),
	}
	for _, r := range records {
		if r.HasAge() {
			report.WithAge++
			if r.Dialect != "" {
				report.Dialects[r.Dialect]++
			}
		} else {
			report.Failed++
		}
	}
	return report
}
