// Package history persists run and episode records in SQLite. The JSON
// ledger answers "have we covered this article"; history answers "what
// did past runs do", which the CLI surfaces for operating the daemonless
// pipeline from cron.
package history
