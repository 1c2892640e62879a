// Command ciel drives the instance lifecycle engine: create, mount,
// start, exec into, stop, inspect, list, roll back, and destroy instances
// layered over a shared buildkit. It is a demonstration surface, not the
// full ciel dispatcher — recipe/package management and onboarding are out
// of scope (see SPEC_FULL.md).
package main

import "github.com/cthbleachbit/ciel-rs/cmd/ciel/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
