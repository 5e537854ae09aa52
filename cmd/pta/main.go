package main

import (
	"os"

	"github.com/zhengfang04211x-png/PTA/internal/ptactl"
	"github.com/zhengfang04211x-png/PTA/internal/ptad"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	args := os.Args[1:]
	if shouldRouteToDaemon(args) {
		os.Exit(ptad.Run(stripServe(args)))
	}
	os.Exit(ptactl.Run(args))
}

func shouldRouteToDaemon(args []string) bool {
	for _, a := range args {
		if a == "-serve" || a == "--serve" {
			return true
		}
	}
	return false
}

func stripServe(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-serve" || a == "--serve" {
			continue
		}
		out = append(out, a)
	}
	return out
}
