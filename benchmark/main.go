// Package main provides a performance benchmarking tool for the seobench CLI.
// It generates synthetic exports of increasing size, times full runs with and
// without a SQLite ledger, treats the first successful run as cold and averages
// the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - seobench binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic exports and run outputs are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/seobench/schema"
)

// BenchmarkResult holds the timings for one dataset size and ledger backend.
type BenchmarkResult struct {
	Dataset  string
	Ledger   string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Sizes    []int // URLs per bucket
	Backends []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  os.Args[1],
		Timeout:  5 * time.Minute,
		Runs:     4,
		Sizes:    []int{100, 1000, 10000, 50000},
		Backends: []string{"none", "sqlite"},
	}

	if _, err := exec.LookPath("seobench"); err != nil {
		fmt.Printf("Prerequisites check failed: seobench binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates every dataset and times it against every backend.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, %d runs per backend\n",
		len(config.Sizes), config.Timeout, config.Runs)

	for _, size := range config.Sizes {
		name := fmt.Sprintf("%d-urls", size)
		inputDir := filepath.Join(config.WorkDir, name)
		fmt.Printf("Generating %s\n", name)
		if err := generateDataset(inputDir, size); err != nil {
			fmt.Printf("  Failed to generate %s: %v\n", name, err)
			continue
		}

		for _, backend := range config.Backends {
			cold, warm := runBenchmark(config, inputDir, backend)
			fmt.Printf("  %s ledger: Cold: %s, Warm average: %s\n", backend, cold, warm)
			results = append(results, BenchmarkResult{Dataset: name, Ledger: backend, ColdTime: cold, WarmTime: warm})
		}
	}

	return results
}

// generateDataset writes nine performance exports and a metadata export with size URLs per bucket.
func generateDataset(dir string, size int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	prefixes := map[schema.Bucket]string{
		schema.ServiceBucket:    "/services/service-",
		schema.LocationBucket:   "/locations/city-",
		schema.SupportingBucket: "/blog/post-",
	}

	var meta strings.Builder
	meta.WriteString("URL,Type,Title 1,Meta Description 1,H1-1\n")
	for _, b := range schema.AllBuckets {
		for i := range size {
			_, _ = fmt.Fprintf(&meta, "https://example.com%s%d/,%s,Page %d,Description %d,Heading %d\n", prefixes[b], i, b, i, i, i)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, schema.DefaultMetadataFile), []byte(meta.String()), 0o644); err != nil {
		return err
	}

	for _, w := range schema.AllWindows {
		for _, b := range schema.AllBuckets {
			var perf strings.Builder
			perf.WriteString("url,clicks_current,clicks_prior,impr_current,impr_prior,users_current,users_prior,events_current,events_prior\n")
			for i := range size {
				_, _ = fmt.Fprintf(&perf, "https://example.com%s%d/,%d,%d,%d,%d,%d,%d,%d,%d\n",
					prefixes[b], i, i%50, (i+7)%50, i*10%900, (i+3)*10%900, i%9, (i+1)%9, i%3, (i+2)%3)
			}
			if err := os.WriteFile(filepath.Join(dir, schema.DefaultInputFile(w, b)), []byte(perf.String()), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

// runBenchmark runs seobench config.Runs times and returns the cold time and warm average.
// Each run gets its own output root so run ids never collide.
func runBenchmark(config BenchmarkConfig, inputDir, backend string) (coldTime, warmAvg string) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		outputRoot := filepath.Join(inputDir, "out", fmt.Sprintf("%s-%d", backend, run))
		args := []string{"run", "--input-dir", inputDir, "--output-root", outputRoot, "--quiet", "--ledger-backend", backend}
		if backend == "sqlite" {
			args = append(args, "--ledger-db-connect", filepath.Join(inputDir, "ledger.db"))
		}

		start := time.Now()
		cmd := exec.Command("seobench", args...)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.CombinedOutput()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) == 0 {
		return "TIMEOUT", "TIMEOUT"
	}
	coldTime = fmt.Sprintf("%.3fs", times[0])
	if len(times) == 1 {
		return coldTime, "N/A"
	}
	var sum float64
	for _, t := range times[1:] {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/seobench_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "ledger", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Ledger, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s %-7s: Cold: %s, Warm: %s\n", result.Dataset, result.Ledger, result.ColdTime, result.WarmTime)
	}
}
