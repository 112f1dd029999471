// Package main hosts the subman CLI entrypoint and command graph.
//
// The Cobra command tree exposes each tool (download, combine, generate) as
// a subcommand that prompts on stdin for anything not passed as an argument
// or flag. Running subman with no subcommand opens the interactive menu,
// which re-executes the same binary for each tool. Configuration resolution,
// logging setup, and the history catalog are shared through commandContext
// so subcommands only deal with their own prompts and output.
package main
