package main

import "github.com/ogulcanaydogan/viraltrack/internal/cli"

func main() {
	cli.Execute()
}
