package app

import "os"

// ANSI color codes used by the CLI.
const (
	Red   = "31"
	Green = "32"
	Cyan  = "36"
)

// Color wraps text in an ANSI color when stdout is a terminal. NO_COLOR or
// TERM=dumb turn it off.
func Color(text, code string) string {
	if code == "" || !colorEnabled() {
		return text
	}
	return "\x1b[" + code + "m" + text + "\x1b[0m"
}

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
