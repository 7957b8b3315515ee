package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/inkmark/internal/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		// Bare invocation opens an untitled buffer.
		commands.Edit(nil)
		return
	}

	command := os.Args[1]

	switch command {
	case "edit", "e":
		commands.Edit(os.Args[2:])
	case "preview", "p":
		commands.Preview(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "outline":
		commands.Outline(os.Args[2:])
	case "stats":
		commands.Stats(os.Args[2:])
	case "activity":
		commands.Activity(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("inkmark v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		// A markdown path as the first argument opens the editor on it.
		if _, err := os.Stat(command); err == nil {
			commands.Edit(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := `inkmark - Terminal markdown editor with a live structured view

Usage:
  inkmark [file]
  inkmark <command> [options]

Commands:
  edit, e       Open a file in the editor (default)
  preview, p    Render a markdown file to the terminal
  diff          Show a rendered diff between two markdown files
  outline       Print the heading outline of a file
  stats         Print word, character and line counts
  activity      Show recent editing activity from the log
  version       Show version information
  help          Show this help message

Examples:
  inkmark notes/todo.md
  inkmark preview README.md
  inkmark diff draft.md final.md
  inkmark outline notes/plan.md
`
	fmt.Print(usage)
}
