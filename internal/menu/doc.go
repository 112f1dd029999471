// Package menu implements the interactive main menu.
//
// Each entry runs one subcommand as a child process through a Runner, so a
// crash or os.Exit inside a tool returns the user to the menu instead of
// ending the session. The loop ends on the exit choice or end of input.
package menu
