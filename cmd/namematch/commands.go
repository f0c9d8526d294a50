package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/namematch/internal/config"
	"github.com/standardbeagle/namematch/internal/dataset"
	"github.com/standardbeagle/namematch/internal/index"
	"github.com/standardbeagle/namematch/internal/matcher"
)

func joinArgs(c *cli.Context) string {
	return strings.Join(c.Args().Slice(), " ")
}

func matchCommand(c *cli.Context) error {
	return runMatch(c, c.String("name"), c.Int("top-k"), c.Bool("json"))
}

func runMatch(c *cli.Context, query string, topK int, asJSON bool) error {
	logger, err := buildLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	_, idx, err := loadIndex(c, cfg, logger)
	if err != nil {
		return err
	}

	m := matcher.New(idx, cfg, logger)
	start := time.Now()
	results, err := m.Match(query, topK)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if asJSON {
		return writeResultsJSON(os.Stdout, query, results, elapsed)
	}
	renderResults(os.Stdout, query, results, elapsed)
	return nil
}

func interactiveCommand(c *cli.Context) error {
	logger, err := buildLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	src, idx, err := loadIndex(c, cfg, logger)
	if err != nil {
		return err
	}

	// Queries read the index through an atomic pointer so a watch-mode
	// rebuild never disturbs a match already in flight.
	var current atomic.Pointer[index.Index]
	current.Store(idx)

	if c.Bool("watch") {
		debounce := time.Duration(cfg.Dataset.WatchDebounceMs) * time.Millisecond
		w, err := dataset.Watch(cfg.Dataset.Path, src, debounce, datasetOptions(c, cfg, logger),
			func(s *dataset.Source) {
				rebuilt := index.Build(s.Names, indexOptions(cfg, logger))
				current.Store(rebuilt)
				fmt.Printf("\nDataset changed: reindexed %d candidates.\n", rebuilt.Size())
			})
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	printBanner(os.Stdout, cfg.Dataset.Path, idx.Size(), c.Bool("watch"))

	topK := config.DefaultTopK
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nname> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		}
		if rest, ok := strings.CutPrefix(strings.ToLower(line), "top "); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil || n < 1 {
				fmt.Println("Usage: top N (e.g. 'top 10')")
				continue
			}
			topK = n
			fmt.Printf("Showing top %d results.\n", topK)
			continue
		}

		m := matcher.New(current.Load(), cfg, logger)
		start := time.Now()
		results, err := m.Match(line, topK)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		renderResults(os.Stdout, line, results, time.Since(start))
	}
}

func statsCommand(c *cli.Context) error {
	logger, err := buildLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	src, idx, err := loadIndex(c, cfg, logger)
	if err != nil {
		return err
	}

	st := idx.Stats()
	if c.Bool("json") {
		output := map[string]interface{}{
			"dataset":     cfg.Dataset.Path,
			"files":       src.Paths,
			"rows":        len(src.Names),
			"fingerprint": fmt.Sprintf("%016x", src.Fingerprint),
			"index":       st,
		}
		return json.NewEncoder(os.Stdout).Encode(output)
	}
	renderStats(os.Stdout, cfg.Dataset.Path, src, st)
	return nil
}
