package claspio

import "os"

// envTermSize reads COLUMNS and LINES, the shell-maintained fallback for
// sizes when stdout is not a terminal.
func envTermSize() (int, int) {
	var w, h int
	if c := os.Getenv("COLUMNS"); c != "" {
		if v := atoi(c); v > 0 {
			w = v
		}
	}
	if l := os.Getenv("LINES"); l != "" {
		if v := atoi(l); v > 0 {
			h = v
		}
	}
	return w, h
}

// atoi parses a small non-negative decimal, returning 0 on any other input.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
