package consensus

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/kanji/internal/models"
)

const dateLayout = "Mon Jan 2 2006 15:04 MST"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func eventCreatedText(ev *models.Event, opts []*models.DateOption) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New event %q created! Vote on a date:", ev.Title)
	for _, o := range opts {
		b.WriteString("\n• ")
		b.WriteString(formatDate(o.StartsAt))
	}
	return b.String()
}

func dateDecidedText(ev *models.Event) string {
	by := "by vote"
	if ev.DateDecidedBy == models.DecidedByOrganizer {
		by = "by the organizer"
	}
	return fmt.Sprintf("Date decided for %q (%s): %s. Next up: choosing a venue.",
		ev.Title, by, formatDate(*ev.DecidedDate))
}

func venueDecidedText(ev *models.Event) string {
	text := fmt.Sprintf("Venue decided for %q: %s on %s.", ev.Title, ev.DecidedVenueName, formatDate(*ev.DecidedDate))
	if ev.DecidedVenueURL != "" {
		text += " " + ev.DecidedVenueURL
	}
	return text
}

func cancelledText(ev *models.Event) string {
	return fmt.Sprintf("Event %q has been cancelled.", ev.Title)
}
