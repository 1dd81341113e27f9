package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recall-labs/recall/internal/core/ports/driven"
)

// now is a package variable so tests can pin the clock.
var now = time.Now

// newID builds a readable unique id: prefix, timestamp, short uuid suffix.
// The timestamp keeps ids scannable; the suffix removes collision risk for
// records created within the same second.
func newID(prefix string, t time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s", prefix, t.Format("20060102_150405"), suffix)
}

// persist checkpoints the store to indexPath. An empty path disables
// persistence.
func persist(ctx context.Context, store driven.EmbeddingsStore, indexPath string) error {
	if indexPath == "" {
		return nil
	}
	if err := store.Save(ctx, indexPath); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}
