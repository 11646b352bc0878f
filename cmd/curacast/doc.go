// Command curacast is the CLI for the curacast podcast pipeline. The run
// subcommand executes one full episode pass and is designed to be invoked
// from cron; the remaining subcommands inspect and maintain pipeline state.
package main
