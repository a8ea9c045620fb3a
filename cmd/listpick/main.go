package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"listpick/internal/config"
	"listpick/internal/eventbus"
	"listpick/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line arguments
	var configPath, mode, title string
	flag.StringVar(&configPath, "config", "", "Path to a TOML config file")
	flag.StringVar(&configPath, "c", "", "Path to a TOML config file (shorthand)")
	flag.StringVar(&mode, "mode", "", "Selection mode: single or multi")
	flag.StringVar(&mode, "m", "", "Selection mode: single or multi (shorthand)")
	flag.StringVar(&title, "title", "", "Title shown above the list")
	flag.StringVar(&title, "t", "", "Title shown above the list (shorthand)")
	flag.Parse()

	// Set up logging
	logFile, err := os.OpenFile("listpick.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create event bus
	bus := eventbus.New()
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus)
	cfg, path, err := loadConfig(configSvc, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 2
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if title != "" {
		cfg.Title = title
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	items := cfg.BuildItems()
	var input io.Reader
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
	}
	read, err := readItems(flag.Args(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	items = append(items, read...)
	log.Printf("Loaded %d items (%d from command line or stdin)", len(items), len(read))

	statePath := config.StatePath(cfg, path)
	var remembered []string
	if cfg.RememberSelection {
		state, err := configSvc.LoadSelection(statePath)
		if err != nil {
			log.Printf("Failed to load selection: %v", err)
		} else {
			remembered = state.Values
		}
	}

	sel, err := newSelector(cfg, items, remembered, func(err error) {
		log.Printf("Selector: %v", err)
		bus.Publish(eventbus.ErrorEvent{Message: err.Error(), Err: err})
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer sel.Close()

	// Create UI model; the terminal UI draws on stderr so stdout carries the result
	uiModel := ui.NewModel(bus, cfg, sel)
	defer uiModel.Close()
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	uiModel.SetProgram(p)

	forward := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	bus.Subscribe(eventbus.EventError, forward)
	bus.Subscribe(eventbus.EventSelectionSaved, forward)

	if cfg.RememberSelection {
		bus.Subscribe(eventbus.EventSelectionChanged, func(e eventbus.DomainEvent) {
			if event, ok := e.(eventbus.SelectionChangedEvent); ok {
				if err := configSvc.SaveSelection(statePath, itemValues(event.Selected)); err != nil {
					log.Printf("Failed to save selection: %v", err)
					bus.Publish(eventbus.ErrorEvent{Message: "could not save selection", Err: err})
				}
			}
		})
	}

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		p.Quit()
	}()

	// Run the UI
	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 2
	}
	log.Printf("UI exited normally")

	result := uiModel.Result()
	// Let queued saves finish before the final one
	bus.Close()
	if cfg.RememberSelection && !result.Aborted {
		if err := configSvc.SaveSelection(statePath, result.Values()); err != nil {
			log.Printf("Failed to save selection: %v", err)
		}
	}

	if result.Aborted {
		return 1
	}
	for _, v := range result.Values() {
		fmt.Println(v)
	}
	return 0
}
