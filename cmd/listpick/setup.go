package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"listpick/internal/collections"
	"listpick/internal/config"
	"listpick/internal/domain"
	"listpick/internal/selection"
)

// readItems builds items from the arguments, or from r one per line when
// there are none. Blank lines are skipped.
func readItems(args []string, r io.Reader) ([]*domain.Item, error) {
	var items []*domain.Item
	if len(args) > 0 {
		for _, a := range args {
			if strings.TrimSpace(a) != "" {
				items = append(items, domain.NewItem(a, ""))
			}
		}
		return items, nil
	}
	if r == nil {
		return nil, nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, domain.NewItem(line, ""))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

// newSelector fills a fresh items list and selects the initial items inside
// one init cycle. A remembered selection wins over items marked in the config;
// in single mode the first item is the fallback.
func newSelector(cfg *config.Config, items []*domain.Item, remembered []string, onError func(error)) (*selection.Selector, error) {
	mode := selection.Single
	if cfg.Mode == config.ModeMulti {
		mode = selection.Multiple
	}

	list := collections.NewList()
	opts := []selection.Option{selection.WithMode(mode)}
	if onError != nil {
		opts = append(opts, selection.WithErrorHandler(onError))
	}
	sel, err := selection.New(list, opts...)
	if err != nil {
		return nil, err
	}

	restore := matchValues(items, remembered)

	sel.BeginInit()
	if len(items) > 0 && mode == selection.Single {
		// Deferred; dropped at EndInit when anything else got selected
		if err := sel.SetSelectedIndex(0); err != nil {
			return nil, err
		}
	}

	values := make([]any, len(items))
	for i, it := range items {
		values[i] = it
		if len(restore) == 0 && it.Preselected {
			sel.Containers().MarkPreselected(it)
		}
	}
	if err := list.InsertRange(0, values...); err != nil {
		return nil, err
	}
	if len(restore) > 0 {
		if err := sel.SelectItems(restore); err != nil {
			return nil, err
		}
	}
	if err := sel.EndInit(); err != nil {
		return nil, err
	}
	return sel, nil
}

// matchValues returns the items whose value is in values, in values order
func matchValues(items []*domain.Item, values []string) []any {
	byValue := make(map[string]*domain.Item, len(items))
	for _, it := range items {
		if _, ok := byValue[it.Value]; !ok {
			byValue[it.Value] = it
		}
	}

	var out []any
	for _, v := range values {
		if it, ok := byValue[v]; ok {
			out = append(out, it)
			delete(byValue, v)
		}
	}
	return out
}

func itemValues(items []*domain.Item) []string {
	return domain.PickResult{Items: items}.Values()
}

// loadConfig loads the file given on the command line, or the per-user config.
// A missing per-user config is written out with the defaults.
func loadConfig(configSvc config.ConfigService, path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := configSvc.LoadFromPath(path)
		if err != nil {
			return nil, "", err
		}
		log.Printf("Loaded config from %s", path)
		return cfg, path, nil
	}

	path = configSvc.DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := configSvc.SaveToPath(cfg, path); err != nil {
			log.Printf("Error writing default config: %v", err)
		} else {
			log.Printf("Created default config at %s", path)
		}
		return cfg, path, nil
	}

	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		cfg = config.DefaultConfig()
	}
	return cfg, path, nil
}
