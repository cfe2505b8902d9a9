package iocli

// IO is the terminal of the interactive commands
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
	// Interactive reports whether input comes from a terminal
	Interactive() bool
}
