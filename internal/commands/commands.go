// Package commands implements the CLI subcommands.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/gerunddev/inkmark/internal/config"
	"github.com/gerunddev/inkmark/internal/diff"
	"github.com/gerunddev/inkmark/internal/logger"
	"github.com/gerunddev/inkmark/internal/markdown"
	"github.com/gerunddev/inkmark/internal/styles"
	"github.com/gerunddev/inkmark/internal/tui"
)

// Edit opens the interactive editor on a file.
func Edit(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.LogFile != "" {
		l, cleanup, err := logger.NewFileLogger(cfg.LogFile)
		if err == nil {
			defer cleanup()
			log = l
		} else {
			log = logger.Discard()
		}
	} else {
		log = logger.Discard()
	}

	if err := tui.Run(path, cfg, log); err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ " + err.Error()))
		os.Exit(1)
	}
}

// Preview renders a markdown file to the terminal without opening the
// editor.
func Preview(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input file specified")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Failed to read file: " + err.Error()))
		os.Exit(1)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(string(data))
		return
	}

	rendered, err := renderer.Render(string(data))
	if err != nil {
		fmt.Print(string(data))
		return
	}
	fmt.Print(rendered)
}

// Diff prints a rendered unified diff between two markdown files.
func Diff(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Error: diff needs two files")
		os.Exit(1)
	}

	oldData, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Failed to read file: " + err.Error()))
		os.Exit(1)
	}
	newData, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Failed to read file: " + err.Error()))
		os.Exit(1)
	}

	unified := diff.Unified(args[0], string(oldData), string(newData))
	fmt.Print(diff.RenderTerminal(unified))
}

// Outline prints the heading outline of a markdown file.
func Outline(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input file specified")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Failed to read file: " + err.Error()))
		os.Exit(1)
	}

	doc := markdown.Parse(string(data))
	outline := markdown.Outline(doc)
	if len(outline) == 0 {
		fmt.Println(styles.DimStyle.Render("No headings"))
		return
	}

	for _, entry := range outline {
		indent := strings.Repeat("  ", entry.Level-1)
		fmt.Printf("%s%s %s\n",
			indent,
			styles.DimStyle.Render(fmt.Sprintf("%4d", entry.Line)),
			styles.HighlightStyle.Render(entry.Text))
	}
}

// Stats prints word, character and line counts for a markdown file.
func Stats(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input file specified")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Failed to read file: " + err.Error()))
		os.Exit(1)
	}

	stats := markdown.ComputeStats(string(data))
	fmt.Printf("  Words: %s\n", styles.HighlightStyle.Render(fmt.Sprintf("%d", stats.Words)))
	fmt.Printf("  Chars: %s\n", styles.HighlightStyle.Render(fmt.Sprintf("%d", stats.Chars)))
	fmt.Printf("  Lines: %s\n", styles.HighlightStyle.Render(fmt.Sprintf("%d", stats.Lines)))
}

// Activity prints recent editing activity from the log file.
func Activity(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.LogFile == "" {
		fmt.Println(styles.DimStyle.Render("No log file configured"))
		return
	}

	lines, lastEdit, editCount := RecentActivity(cfg.LogFile, 20)

	fmt.Println(styles.TitleStyle.Render("Recent Activity"))
	if !lastEdit.IsZero() {
		fmt.Printf("  Last edit:  %s\n", styles.HighlightStyle.Render(lastEdit.Format("2006-01-02 15:04:05")))
	}
	fmt.Printf("  Edits seen: %s\n\n", styles.HighlightStyle.Render(fmt.Sprintf("%d", editCount)))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			fmt.Println(styles.DimStyle.Render("  " + line))
		}
	}
}
