// Command rmctl is the headless redditmini CLI: run one loader and print its
// state as JSON, or inspect diagnostics.
//
// Usage:
//
//	rmctl                          Show help
//	rmctl feed [category]          Category feed with avatars
//	rmctl detail <category> <id>   One item with its replies
//	rmctl daily                    Daily threads batch
//	rmctl popular                  Popular communities
//	rmctl events                   JSONL event log viewer
//	rmctl journal                  Request journal (recent exchanges, host stats)
package main

import (
	"fmt"
	"os"
)

const usage = `rmctl - redditmini headless CLI

Usage:
  rmctl <command> [flags] [args]

Commands:
  feed        Load a category feed and print its state as JSON
  detail      Load one item and its replies and print the state as JSON
  daily       Load the daily threads and print the state as JSON
  popular     Load the popular communities and print the state as JSON
  events      JSONL event log viewer
  journal     Recent upstream exchanges and per-host stats

Environment:
  REDDITMINI_CONFIG    Config file (default ~/.redditmini/config.json)
  REDDITMINI_BASE_URL  API root (default https://www.reddit.com)

Run 'rmctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "feed":
		os.Exit(runFeed())
	case "detail":
		os.Exit(runDetail())
	case "daily":
		os.Exit(runDaily())
	case "popular":
		os.Exit(runPopular())
	case "events":
		runEvents()
	case "journal":
		runJournal()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "rmctl: unknown command %q\n\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}
