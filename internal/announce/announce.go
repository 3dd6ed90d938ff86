// Package announce publishes notable mountain transitions to the outside world.
package announce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

var ErrAnnounce = errors.New("announce")

// Error wraps a failure of one announcer.
type Error struct {
	Announcer string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("announce via %s: %v", e.Announcer, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrAnnounce }

// Announcement is one outbound post. ID lets downstream consumers drop
// duplicates when a delivery is retried.
type Announcement struct {
	ID        uuid.UUID   `json:"id"`
	Site      string      `json:"site"`
	Label     types.Label `json:"label"`
	Message   string      `json:"message"`
	Tags      []string    `json:"tags,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	// ImageKey is the archive object key of the snapshot, when archived.
	ImageKey string `json:"imageKey,omitempty"`
	Image    []byte `json:"-"`
}

// Status renders the post body: the message, then the hashtags on their own line.
func (a Announcement) Status() string {
	if len(a.Tags) == 0 {
		return a.Message
	}
	tags := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		tags[i] = "#" + strings.TrimPrefix(t, "#")
	}
	return a.Message + "\n" + strings.Join(tags, " ")
}

// Announcer delivers an announcement. Implementations wrap failures in *Error.
type Announcer interface {
	Name() string
	Announce(ctx context.Context, a Announcement) error
}
