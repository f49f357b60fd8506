package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable profile or global config)
	ExitDataError   = 3 // Data error (no PDFs found, invalid identifiers, empty database)
)
