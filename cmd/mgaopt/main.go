// Package main provides the command-line entry point for mga-optimizer: it
// resolves tool/material/machine/strategy records from a catalog, runs one
// constrained cutting-parameter optimization (or a scenario comparison),
// and prints or exports the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/luanshen/mga-optimizer/internal/optimize"
	"github.com/luanshen/mga-optimizer/internal/report"
	"github.com/luanshen/mga-optimizer/internal/repository"
)

func main() {
	os.Exit(run())
}

func run() int {
	catalog := flag.String("catalog", "", "path to a JSON catalog file (default: built-in fixture catalog)")
	list := flag.Bool("list", false, "list available records and exit")

	toolID := flag.String("tool", "em25-carbide", "tool record id")
	materialID := flag.String("material", "steel-medium", "material record id")
	machineID := flag.String("machine", "mill-3axis-5k", "machine record id")
	strategyID := flag.String("strategy", "mill-roughing", "strategy record id")

	seed := flag.Int64("seed", 42, "random seed for the genetic algorithm")
	population := flag.Int("population", 0, "population size override (100-100000, 0 = default)")
	generations := flag.Int("generations", 0, "generation budget override (10-1000, 0 = default)")
	crossover := flag.Float64("crossover", -1, "crossover rate override (0-1, negative = default)")
	mutation := flag.Float64("mutation", -1, "mutation rate override (0-1, negative = default)")
	adaptive := flag.Bool("adaptive", false, "enable the adaptive rate schedule")
	timeout := flag.Duration("timeout", 0, "wall-clock budget for the whole run (0 = none)")
	noPlanner := flag.Bool("no-planner", false, "skip the search-box planner, use the vendor envelope directly")
	noReview := flag.Bool("no-review", false, "skip the post-optimization safety review")

	compare := flag.Bool("compare", false, "run a what-if comparison across default scenario variants")
	pdfPath := flag.String("pdf", "", "write a PDF setup sheet to this path")
	xlsxPath := flag.String("xlsx", "", "write the comparison table to this .xlsx path (implies -compare)")
	flag.Parse()

	repo, err := openRepository(*catalog)
	if err != nil {
		log.Printf("failed to open catalog: %v", err)
		return 1
	}

	if *list {
		printCatalog(repo)
		return 0
	}

	req := optimize.Request{
		MaterialID:    *materialID,
		ToolID:        *toolID,
		MachineID:     *machineID,
		StrategyID:    *strategyID,
		Seed:          *seed,
		AdaptiveRates: *adaptive,
		SkipPlanner:   *noPlanner,
		SkipReview:    *noReview,
	}
	if *population > 0 {
		req.PopulationSize = population
	}
	if *generations > 0 {
		req.Generations = generations
	}
	if *crossover >= 0 {
		req.CrossoverRate = crossover
	}
	if *mutation >= 0 {
		req.MutationRate = mutation
	}

	facade := optimize.New(repo)
	facade.Timeout = *timeout

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	if *compare || *xlsxPath != "" {
		return runComparison(ctx, facade, req, *xlsxPath)
	}

	start := time.Now()
	resp, err := facade.Run(ctx, req)
	switch {
	case errors.Is(err, domain.ErrCancelled):
		log.Printf("optimization cancelled after %s; printing the incumbent", time.Since(start).Round(time.Millisecond))
	case err != nil:
		log.Printf("optimization failed: %v", err)
		return 1
	}

	printResponse(resp, time.Since(start))

	if *pdfPath != "" {
		if err := report.ExportSetupSheet(*pdfPath, req, resp); err != nil {
			log.Printf("failed to write setup sheet: %v", err)
			return 1
		}
		fmt.Printf("\nSetup sheet written to %s\n", *pdfPath)
	}

	return 0
}

func openRepository(catalogPath string) (repository.Repository, error) {
	if catalogPath == "" {
		return repository.NewFixtureRepository(), nil
	}
	return repository.LoadJSONFileRepository(catalogPath)
}

func printCatalog(repo repository.Repository) {
	lister, ok := repo.(interface {
		ListTools() []string
		ListMaterials() []string
		ListMachines() []string
		ListStrategies() []string
	})
	if !ok {
		fmt.Println("catalog does not support listing")
		return
	}

	sections := []struct {
		name string
		ids  []string
	}{
		{"Tools", lister.ListTools()},
		{"Materials", lister.ListMaterials()},
		{"Machines", lister.ListMachines()},
		{"Strategies", lister.ListStrategies()},
	}
	for _, s := range sections {
		sort.Strings(s.ids)
		fmt.Printf("%s:\n", s.name)
		for _, id := range s.ids {
			fmt.Printf("  %s\n", id)
		}
	}
}

func printResponse(resp optimize.Response, elapsed time.Duration) {
	fmt.Printf("Result %s (%s, %d generations)\n", resp.ID, elapsed.Round(time.Millisecond), resp.Generations)
	fmt.Println(resp.Message)
	fmt.Println()

	ev := resp.Evaluation
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Quantity\tValue\tUnit")
	fmt.Fprintln(w, "--------\t-----\t----")
	fmt.Fprintf(w, "Spindle speed\t%.2f\tr/min\n", ev.SpeedRPM)
	fmt.Fprintf(w, "Feed rate\t%.2f\tmm/min\n", ev.FeedMMMin)
	fmt.Fprintf(w, "Cut depth\t%.2f\tmm\n", ev.CutDepthMM)
	fmt.Fprintf(w, "Cut width\t%.2f\tmm\n", ev.CutWidthMM)
	fmt.Fprintf(w, "Feed per tooth\t%.4f\tmm\n", ev.FeedPerToothMM)
	fmt.Fprintf(w, "Cutting speed\t%.2f\tm/min\n", ev.CuttingSpeedMMin)
	fmt.Fprintf(w, "Removal rate\t%.2f\tcm3/min\n", ev.MRRCm3Min)
	fmt.Fprintf(w, "Power\t%.2f\tkW\n", ev.PowerKW)
	fmt.Fprintf(w, "Torque\t%.2f\tNm\n", ev.TorqueNm)
	fmt.Fprintf(w, "Feed force\t%.2f\tN\n", ev.FeedForceN)
	fmt.Fprintf(w, "Tool life\t%.2f\tmin\n", ev.ToolLifeMin)
	fmt.Fprintf(w, "Roughness Rz\t%.2f\tum\n", ev.RzUM)
	fmt.Fprintf(w, "Roughness Rx\t%.2f\tum\n", ev.RxUM)
	fmt.Fprintf(w, "Deflection\t%.4f\tmm\n", ev.DeflectionMM)
	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	if resp.SearchReason != "" {
		fmt.Printf("\nSearch box: %s\n", resp.SearchReason)
	}
	for _, key := range []string{"speed", "feed", "cut_depth", "general", "assistant"} {
		if advice, ok := resp.Advice[key]; ok {
			fmt.Printf("  [%s] %s\n", key, advice)
		}
	}

	if resp.Review != nil {
		fmt.Printf("\nSafety review: score %.0f/100, %s\n", resp.Review.SafetyScore, resp.Review.OverallAssessment)
		for _, item := range resp.Review.Items {
			if item.Severity == domain.Safe {
				continue
			}
			fmt.Printf("  [%s] %s: %s\n", item.Severity, item.Name, item.Message)
		}
	}
}

func runComparison(ctx context.Context, facade *optimize.Facade, base optimize.Request, xlsxPath string) int {
	scenarios := optimize.BuildDefaultScenarios(base)
	log.Printf("comparing %d scenarios", len(scenarios))

	results := optimize.CompareScenarios(ctx, facade, scenarios)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Scenario\tMRR\tFitness\tSafety\tGenerations\tStatus")
	fmt.Fprintln(w, "--------\t---\t-------\t------\t-----------\t------")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.6f\t%.0f\t%d\tok\n",
			r.Scenario.Name, r.MRRCm3Min, r.Fitness, r.SafetyScore, r.Generations)
	}
	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}

	if xlsxPath != "" {
		if err := report.ExportComparisonXLSX(xlsxPath, results); err != nil {
			log.Printf("failed to write comparison workbook: %v", err)
			return 1
		}
		fmt.Printf("\nComparison workbook written to %s\n", xlsxPath)
	}

	return 0
}
