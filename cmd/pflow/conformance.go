package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pflow-xyz/go-pflow/eventlog"
	"github.com/pflow-xyz/go-pflow/history"
	"github.com/pflow-xyz/go-pflow/mining"
	"github.com/pflow-xyz/go-pflow/parser"
)

func conformance(args []string) error {
	fs := flag.NewFlagSet("conformance", flag.ExitOnError)
	logFormat := fs.String("format", "", "Event log format: csv or jsonl (default: inferred from extension)")
	caseCol := fs.String("case-col", "case_id", "CSV column holding the case ID")
	activityCol := fs.String("activity-col", "activity", "CSV column holding the activity name")
	timestampCol := fs.String("timestamp-col", "timestamp", "CSV column holding the event timestamp")
	cacheMode := fs.String("cache", "prefix-suffix", "Replay cache mode: none, prefix, suffix, prefix-suffix")
	hyperGraph := fs.Bool("hypergraph", false, "Use the bounded hypergraph planner instead of the heuristic planner")
	concurrency := fs.Int("workers", 0, "Replay traces across this many workers (0 = sequential)")
	outputJSON := fs.Bool("json", false, "Output results as JSON")
	outputFile := fs.String("output", "", "Write JSON results to file")
	historyPath := fs.String("history", "", "Append this run to a SQLite history database at the given path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: pflow conformance <model.json> <eventlog> [options]

Replay an event log against a Petri net model and report fitness and
precision: how well the model accounts for logged behavior, and how much
behavior beyond the log the model allows.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Replay a CSV log
  pflow conformance model.json log.csv

  # Replay a JSONL log with custom cache mode
  pflow conformance model.json log.jsonl --cache suffix

  # Replay across 8 workers and keep a run history
  pflow conformance model.json log.csv --workers 8 --history runs.db

  # Output as JSON
  pflow conformance model.json log.csv --json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("model file and event log file required")
	}

	modelFile := fs.Arg(0)
	logFile := fs.Arg(1)

	jsonData, err := os.ReadFile(modelFile)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}
	net, err := parser.FromJSON(jsonData)
	if err != nil {
		return fmt.Errorf("parse model: %w", err)
	}

	log, err := loadEventLog(logFile, *logFormat, *caseCol, *activityCol, *timestampCol)
	if err != nil {
		return fmt.Errorf("load event log: %w", err)
	}

	opts := mining.NewConformanceOptions()
	opts.UseHyperGraphPlanner = *hyperGraph
	mode, err := parseCacheMode(*cacheMode)
	if err != nil {
		return err
	}
	opts.CacheMode = mode

	var fitness *mining.ConformanceResult
	if *concurrency > 0 {
		fitness, err = mining.CheckConformanceConcurrentWithOptions(log, net, opts, *concurrency)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	} else {
		fitness = mining.CheckConformanceWithOptions(log, net, opts)
	}
	precision := mining.CheckPrecisionWithOptions(log, net, opts)

	full := &mining.FullConformanceResult{Fitness: fitness, Precision: precision}
	if fitness.Fitness+precision.Precision > 0 {
		full.FScore = 2 * fitness.Fitness * precision.Precision / (fitness.Fitness + precision.Precision)
	}

	if *historyPath != "" {
		if err := recordHistory(*historyPath, modelFile, logFile, full); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record history: %v\n", err)
		}
	}

	if *outputJSON || *outputFile != "" {
		data, err := json.MarshalIndent(full, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if *outputFile != "" {
			if err := os.WriteFile(*outputFile, data, 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Conformance results written to %s\n", *outputFile)
		} else {
			fmt.Println(string(data))
		}
		return nil
	}

	fmt.Print(full.String())
	return nil
}

func parseCacheMode(name string) (mining.CacheMode, error) {
	switch strings.ToLower(name) {
	case "none", "no-cache":
		return mining.NoCache, nil
	case "prefix":
		return mining.PrefixCaching, nil
	case "suffix":
		return mining.SuffixCaching, nil
	case "prefix-suffix", "both", "":
		return mining.PrefixAndSuffixCaching, nil
	default:
		return mining.NoCache, fmt.Errorf("unknown cache mode %q (want none, prefix, suffix, or prefix-suffix)", name)
	}
}

func loadEventLog(path, format, caseCol, activityCol, timestampCol string) (*eventlog.EventLog, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch format {
	case "csv":
		config := eventlog.DefaultCSVConfig()
		config.CaseIDColumn = caseCol
		config.ActivityColumn = activityCol
		config.TimestampColumn = timestampCol
		return eventlog.ParseCSV(path, config)
	case "jsonl", "ndjson":
		return eventlog.ParseJSONL(path, eventlog.DefaultJSONLConfig())
	default:
		return nil, fmt.Errorf("unrecognized event log format %q (pass --format csv or --format jsonl)", format)
	}
}

func recordHistory(dbPath, modelFile, logFile string, full *mining.FullConformanceResult) error {
	store, err := history.New(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.Run{
		ID:          uuid.NewString(),
		ModelPath:   modelFile,
		LogPath:     logFile,
		StartedAt:   time.Now().UTC(),
		TotalTraces: full.Fitness.TotalTraces,
		Fitness:     full.Fitness.Fitness,
		Precision:   full.Precision.Precision,
		FScore:      full.FScore,
	}

	traces := make([]history.TraceRecord, 0, len(full.Fitness.TraceResults))
	for _, tr := range full.Fitness.TraceResults {
		traces = append(traces, history.TraceRecord{
			CaseID:          tr.CaseID,
			Fitness:         tr.Fitness,
			Fitting:         tr.Fitting,
			MissingTokens:   tr.MissingTokens,
			RemainingTokens: tr.RemainingTokens,
		})
	}

	return store.RecordRun(run, traces)
}
