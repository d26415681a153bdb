package highscore

import (
	"context"
	"log"

	"go.uber.org/multierr"
)

// Fallback reads from Primary and falls back to Local when Primary fails.
// Submissions go to both so the local copy stays usable offline.
type Fallback struct {
	Primary Store
	Local   Store
}

// FetchTop prefers the primary table.
func (f *Fallback) FetchTop(ctx context.Context) ([]Entry, error) {
	entries, err := f.Primary.FetchTop(ctx)
	if err == nil {
		return entries, nil
	}
	log.Printf("⚠️ Remote high scores unavailable, using local copy: %v", err)
	return f.Local.FetchTop(ctx)
}

// Submit writes locally first, then remotely; both errors are reported.
func (f *Fallback) Submit(ctx context.Context, entry Entry) error {
	return multierr.Combine(
		f.Local.Submit(ctx, entry),
		f.Primary.Submit(ctx, entry),
	)
}
