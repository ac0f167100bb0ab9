package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"blast/pkg/loadgen"
)

// runShell prompts for run parameters, executes the run, prints the report,
// and re-prompts until EOF or "quit".
func runShell(in io.Reader, out io.Writer, logger zerolog.Logger) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "blast interactive shell; empty URL or \"quit\" exits")
	for {
		url, ok := prompt(scanner, out, "url> ")
		if !ok || url == "" || url == "quit" || url == "exit" {
			return
		}

		method, ok := prompt(scanner, out, "method [GET]> ")
		if !ok {
			return
		}
		body, ok := prompt(scanner, out, "body []> ")
		if !ok {
			return
		}
		requests, ok := promptInt(scanner, out, "requests [1]> ", 1)
		if !ok {
			return
		}
		concurrency, ok := promptInt(scanner, out, "concurrency [1]> ", 1)
		if !ok {
			return
		}

		cfg := loadgen.Config{
			URL:         url,
			Method:      method,
			Body:        body,
			Requests:    requests,
			Concurrency: concurrency,
		}

		// Configuration errors just re-prompt; the shell session survives them.
		if err := execute(cfg, logger); err != nil {
			fmt.Fprintln(out, err)
		}
		fmt.Fprintln(out)
	}
}

func prompt(scanner *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func promptInt(scanner *bufio.Scanner, out io.Writer, label string, fallback int) (int, bool) {
	for {
		text, ok := prompt(scanner, out, label)
		if !ok {
			return 0, false
		}
		if text == "" {
			return fallback, true
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintf(out, "not a number: %q\n", text)
			continue
		}
		return n, true
	}
}
