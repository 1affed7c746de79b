package sqlstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/kanji/internal/models"
	"github.com/mmynk/kanji/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "kanji-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := OpenSQLite(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedEvent creates an event in DATE_VOTING with the given participant tokens
// and two date options (A then B).
func seedEvent(t *testing.T, store *Store, tokens ...string) (*models.Event, []*models.Participant, []*models.DateOption) {
	t.Helper()
	ctx := context.Background()

	budget := int64(5000)
	event := &models.Event{
		Title:           "Team dinner",
		BudgetPerPerson: &budget,
		Status:          models.StatusDateVoting,
	}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	var participants []*models.Participant
	for _, token := range tokens {
		p := &models.Participant{EventID: event.ID, Token: token, Name: token, Attending: true}
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}
		participants = append(participants, p)
	}

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	var options []*models.DateOption
	for i := 0; i < 2; i++ {
		opt := &models.DateOption{EventID: event.ID, StartsAt: base.Add(time.Duration(i) * time.Hour), Position: i}
		if err := store.CreateDateOption(ctx, opt); err != nil {
			t.Fatalf("CreateDateOption failed: %v", err)
		}
		options = append(options, opt)
	}

	return event, participants, options
}

func TestEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateEvent generates ID and timestamps", func(t *testing.T) {
		event := &models.Event{Title: "Welcome party", Status: models.StatusDateVoting}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if event.ID == "" {
			t.Error("Expected event ID to be generated")
		}
		if event.CreatedAt == 0 || event.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetEvent round-trips optional fields", func(t *testing.T) {
		budget := int64(4000)
		event := &models.Event{
			Title:              "Year-end party",
			Description:        "Bring a gift",
			BudgetPerPerson:    &budget,
			LocationConstraint: "near Shibuya station",
			Status:             models.StatusDateVoting,
		}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Title != event.Title || got.Description != event.Description {
			t.Errorf("GetEvent = %+v, want title/description of %+v", got, event)
		}
		if got.BudgetPerPerson == nil || *got.BudgetPerPerson != 4000 {
			t.Errorf("BudgetPerPerson = %v, want 4000", got.BudgetPerPerson)
		}
		if got.LocationConstraint != "near Shibuya station" {
			t.Errorf("LocationConstraint = %q", got.LocationConstraint)
		}
		if got.DecidedDate != nil || got.TotalBill != nil {
			t.Error("Expected decided date and total bill to be nil")
		}
	})

	t.Run("UpdateEvent persists decided fields", func(t *testing.T) {
		event := &models.Event{Title: "Offsite", Status: models.StatusDateVoting}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		decided := time.Date(2025, 5, 2, 18, 30, 0, 0, time.UTC)
		event.Status = models.StatusVenueSelection
		event.DecidedDate = &decided
		event.DateDecidedBy = models.DecidedByMajority
		if err := store.UpdateEvent(ctx, event); err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Status != models.StatusVenueSelection {
			t.Errorf("Status = %s, want VENUE_SELECTION", got.Status)
		}
		if got.DecidedDate == nil || !got.DecidedDate.Equal(decided) {
			t.Errorf("DecidedDate = %v, want %v", got.DecidedDate, decided)
		}
		if got.DateDecidedBy != models.DecidedByMajority {
			t.Errorf("DateDecidedBy = %q, want majority", got.DateDecidedBy)
		}
	})

	t.Run("GetEvent returns ErrNotFound for nonexistent event", func(t *testing.T) {
		_, err := store.GetEvent(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateEvent returns ErrNotFound for nonexistent event", func(t *testing.T) {
		err := store.UpdateEvent(ctx, &models.Event{ID: "nonexistent-id", Status: models.StatusCancelled})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestVotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, _, options := seedEvent(t, store, "alice", "bob", "carol")
	a := options[0]

	t.Run("InsertVote and RecountVotes", func(t *testing.T) {
		for _, token := range []string{"alice", "bob"} {
			if err := store.InsertVote(ctx, &models.Vote{DateOptionID: a.ID, ParticipantToken: token}); err != nil {
				t.Fatalf("InsertVote failed: %v", err)
			}
		}
		count, err := store.RecountVotes(ctx, a.ID)
		if err != nil {
			t.Fatalf("RecountVotes failed: %v", err)
		}
		if count != 2 {
			t.Errorf("RecountVotes = %d, want 2", count)
		}
	})

	t.Run("duplicate vote is a conflict", func(t *testing.T) {
		err := store.InsertVote(ctx, &models.Vote{DateOptionID: a.ID, ParticipantToken: "alice"})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("DeleteVote reports whether a vote existed", func(t *testing.T) {
		removed, err := store.DeleteVote(ctx, a.ID, "bob")
		if err != nil {
			t.Fatalf("DeleteVote failed: %v", err)
		}
		if !removed {
			t.Error("Expected vote to be removed")
		}

		removed, err = store.DeleteVote(ctx, a.ID, "bob")
		if err != nil {
			t.Fatalf("DeleteVote failed: %v", err)
		}
		if removed {
			t.Error("Expected second delete to remove nothing")
		}
	})

	t.Run("ListDateOptions computes counts from votes", func(t *testing.T) {
		// Deliberately skip RecountVotes after the delete above
		opts, err := store.ListDateOptions(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListDateOptions failed: %v", err)
		}
		if len(opts) != 2 {
			t.Fatalf("Expected 2 options, got %d", len(opts))
		}
		if opts[0].ID != a.ID || opts[0].Position != 0 {
			t.Errorf("Expected option A first, got %+v", opts[0])
		}
		if opts[0].VoteCount != 1 {
			t.Errorf("VoteCount = %d, want 1", opts[0].VoteCount)
		}
		if opts[1].VoteCount != 0 {
			t.Errorf("VoteCount = %d, want 0", opts[1].VoteCount)
		}
	})
}

func TestVenueOptions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, _, _ := seedEvent(t, store, "alice")

	rating := 4.2
	var venues []*models.VenueOption
	for i, name := range []string{"Torikizoku", "Uotami", "Hanano"} {
		v := &models.VenueOption{EventID: event.ID, Name: name, Source: "manual", Position: i}
		if i == 0 {
			v.Rating = &rating
		}
		if err := store.CreateVenueOption(ctx, v); err != nil {
			t.Fatalf("CreateVenueOption failed: %v", err)
		}
		venues = append(venues, v)
	}

	countDecided := func() int {
		list, err := store.ListVenueOptions(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListVenueOptions failed: %v", err)
		}
		n := 0
		for _, v := range list {
			if v.IsDecided {
				n++
			}
		}
		return n
	}

	if err := store.MarkVenueDecided(ctx, event.ID, venues[0].ID); err != nil {
		t.Fatalf("MarkVenueDecided failed: %v", err)
	}
	if err := store.MarkVenueDecided(ctx, event.ID, venues[2].ID); err != nil {
		t.Fatalf("MarkVenueDecided failed: %v", err)
	}
	if n := countDecided(); n != 1 {
		t.Errorf("Expected exactly one decided venue, got %d", n)
	}

	got, err := store.GetVenueOption(ctx, event.ID, venues[2].ID)
	if err != nil {
		t.Fatalf("GetVenueOption failed: %v", err)
	}
	if !got.IsDecided {
		t.Error("Expected last marked venue to be decided")
	}

	first, err := store.GetVenueOption(ctx, event.ID, venues[0].ID)
	if err != nil {
		t.Fatalf("GetVenueOption failed: %v", err)
	}
	if first.Rating == nil || *first.Rating != 4.2 {
		t.Errorf("Rating = %v, want 4.2", first.Rating)
	}

	if err := store.MarkVenueDecided(ctx, event.ID, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBillSplits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, participants, _ := seedEvent(t, store, "alice", "bob")
	alice := participants[0]

	t.Run("GetBillSplit before computation is not found", func(t *testing.T) {
		_, err := store.GetBillSplit(ctx, event.ID, alice.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("upsert keeps is_paid", func(t *testing.T) {
		for _, p := range participants {
			if err := store.UpsertBillSplit(ctx, &models.BillSplit{EventID: event.ID, ParticipantID: p.ID, Amount: 5000}); err != nil {
				t.Fatalf("UpsertBillSplit failed: %v", err)
			}
		}
		if err := store.SetBillSplitPaid(ctx, event.ID, alice.ID, true); err != nil {
			t.Fatalf("SetBillSplitPaid failed: %v", err)
		}

		// Recompute with a new amount
		if err := store.UpsertBillSplit(ctx, &models.BillSplit{EventID: event.ID, ParticipantID: alice.ID, Amount: 6000}); err != nil {
			t.Fatalf("UpsertBillSplit failed: %v", err)
		}

		got, err := store.GetBillSplit(ctx, event.ID, alice.ID)
		if err != nil {
			t.Fatalf("GetBillSplit failed: %v", err)
		}
		if got.Amount != 6000 {
			t.Errorf("Amount = %d, want 6000", got.Amount)
		}
		if !got.IsPaid {
			t.Error("Expected IsPaid to survive recomputation")
		}

		splits, err := store.ListBillSplits(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListBillSplits failed: %v", err)
		}
		if len(splits) != 2 {
			t.Errorf("Expected 2 splits, got %d", len(splits))
		}
	})

	t.Run("DeleteBillSplit", func(t *testing.T) {
		bob := participants[1]
		if err := store.DeleteBillSplit(ctx, event.ID, bob.ID); err != nil {
			t.Fatalf("DeleteBillSplit failed: %v", err)
		}
		if _, err := store.GetBillSplit(ctx, event.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteBillSplit(ctx, event.ID, bob.ID); err != nil {
			t.Errorf("Expected deleting a missing split to succeed, got %v", err)
		}

		got, err := store.GetBillSplit(ctx, event.ID, alice.ID)
		if err != nil {
			t.Fatalf("GetBillSplit failed: %v", err)
		}
		if !got.IsPaid || got.Amount != 6000 {
			t.Errorf("Expected alice's split untouched, got %+v", got)
		}
	})
}

func TestDeleteEventCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, participants, options := seedEvent(t, store, "alice")

	if err := store.InsertVote(ctx, &models.Vote{DateOptionID: options[0].ID, ParticipantToken: "alice"}); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}
	if err := store.CreateVenueOption(ctx, &models.VenueOption{EventID: event.ID, Name: "Uotami"}); err != nil {
		t.Fatalf("CreateVenueOption failed: %v", err)
	}
	if err := store.UpsertBillSplit(ctx, &models.BillSplit{EventID: event.ID, ParticipantID: participants[0].ID, Amount: 100}); err != nil {
		t.Fatalf("UpsertBillSplit failed: %v", err)
	}
	if err := store.CreateNotification(ctx, &models.Notification{EventID: event.ID, Type: models.NotificationEventCreated, Message: "hi", Status: models.DeliverySkipped}); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if err := store.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	tables := []string{"participants", "date_options", "venue_options", "bill_splits", "notifications"}
	for _, table := range tables {
		var n int
		if err := store.db.Get(&n, "SELECT COUNT(*) FROM "+table+" WHERE event_id = ?", event.ID); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("Expected %s to be empty after delete, got %d rows", table, n)
		}
	}

	var votes int
	if err := store.db.Get(&votes, "SELECT COUNT(*) FROM votes"); err != nil {
		t.Fatalf("count votes failed: %v", err)
	}
	if votes != 0 {
		t.Errorf("Expected votes to cascade, got %d rows", votes)
	}
}

func TestInTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, _, options := seedEvent(t, store, "alice")

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.InTx(ctx, func(repo storage.Repository) error {
			if err := repo.InsertVote(ctx, &models.Vote{DateOptionID: options[0].ID, ParticipantToken: "alice"}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected boom, got %v", err)
		}

		opt, err := store.GetDateOption(ctx, event.ID, options[0].ID)
		if err != nil {
			t.Fatalf("GetDateOption failed: %v", err)
		}
		if opt.VoteCount != 0 {
			t.Errorf("Expected vote to be rolled back, VoteCount = %d", opt.VoteCount)
		}
	})

	t.Run("commits on success", func(t *testing.T) {
		err := store.InTx(ctx, func(repo storage.Repository) error {
			locked, err := repo.LockEvent(ctx, event.ID)
			if err != nil {
				return err
			}
			locked.Status = models.StatusCancelled
			return repo.UpdateEvent(ctx, locked)
		})
		if err != nil {
			t.Fatalf("InTx failed: %v", err)
		}

		got, err := store.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got.Status != models.StatusCancelled {
			t.Errorf("Status = %s, want CANCELLED", got.Status)
		}
	})
}

func TestNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, _, _ := seedEvent(t, store, "alice")

	for _, typ := range []models.NotificationType{models.NotificationEventCreated, models.NotificationDateDecided} {
		n := &models.Notification{EventID: event.ID, Type: typ, Message: string(typ), Status: models.DeliverySent}
		if err := store.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification failed: %v", err)
		}
	}

	list, err := store.ListNotifications(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(list))
	}
	seen := map[models.NotificationType]bool{}
	for _, n := range list {
		seen[n.Type] = true
		if n.Status != models.DeliverySent {
			t.Errorf("Status = %s, want SENT", n.Status)
		}
	}
	if !seen[models.NotificationEventCreated] || !seen[models.NotificationDateDecided] {
		t.Errorf("Unexpected notification types: %v", seen)
	}
}

func TestSetNotificationStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	event, _, _ := seedEvent(t, store, "alice")

	n := &models.Notification{EventID: event.ID, Type: models.NotificationDateDecided, Message: "decided", Status: models.DeliveryPending}
	if err := store.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if err := store.SetNotificationStatus(ctx, n.ID, models.DeliveryFailed); err != nil {
		t.Fatalf("SetNotificationStatus failed: %v", err)
	}

	// A settled record is not updated again
	err := store.SetNotificationStatus(ctx, n.ID, models.DeliverySent)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for settled record, got %v", err)
	}
	if err := store.SetNotificationStatus(ctx, "missing", models.DeliverySent); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown record, got %v", err)
	}

	list, err := store.ListNotifications(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(list))
	}
	if list[0].Status != models.DeliveryFailed || list[0].Message != "decided" {
		t.Errorf("Unexpected record %+v", list[0])
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "", ""); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}
