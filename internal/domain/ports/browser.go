package ports

import "context"

// BrowserLauncher opens the deck viewer in a local browser
type BrowserLauncher interface {
	// Open opens url in the first available browser
	Open(ctx context.Context, url string) error
	// Detect returns the name of the browser Open would use
	Detect() (string, error)
}
