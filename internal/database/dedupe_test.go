// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"testing"
	"time"
)

// insertRawWatch bypasses RecordWatch so tests can create duplicates.
func insertRawWatch(t *testing.T, db *DB, profileID, contentID int64, episodeID *int64, at time.Time) int64 {
	t.Helper()
	id, err := db.insertID(context.Background(), db.conn,
		`INSERT INTO watch_events (profile_id, content_id, episode_id, watched_seconds, watched_at) VALUES (?, ?, ?, ?, ?)`,
		profileID, contentID, nullInt64(episodeID), 60, at.UTC())
	if err != nil {
		t.Fatalf("insert watch event: %v", err)
	}
	return id
}

func TestDedupeWatchEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	title := f.contents["Iron Heart"]
	ep, err := db.CreateEpisode(ctx, EpisodeInput{ContentID: title, Season: 1, Number: 1})
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Group 1: no episode, three rows; the earliest by watched_at survives even though it has the highest id.
	insertRawWatch(t, db, f.profile, title, nil, base.Add(2*time.Hour))
	insertRawWatch(t, db, f.profile, title, nil, base.Add(time.Hour))
	keepNull := insertRawWatch(t, db, f.profile, title, nil, base)

	// Group 2: same episode, identical timestamps; the lower id survives.
	keepEpisode := insertRawWatch(t, db, f.profile, title, &ep.ID, base)
	insertRawWatch(t, db, f.profile, title, &ep.ID, base)

	// Unique keys are untouched.
	keepOther := insertRawWatch(t, db, f.other, title, nil, base)

	result, err := db.DedupeWatchEvents(ctx)
	if err != nil {
		t.Fatalf("DedupeWatchEvents() error = %v", err)
	}
	if result.Groups != 2 {
		t.Errorf("Groups = %d, want 2", result.Groups)
	}
	if result.Removed != 3 {
		t.Errorf("Removed = %d, want 3", result.Removed)
	}
	if result.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", result.Remaining)
	}

	ids, err := queryAndScan(ctx, db.conn, "SELECT id FROM watch_events ORDER BY id", nil, scanInt64)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int64]bool{keepNull: true, keepEpisode: true, keepOther: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected surviving row %d", id)
		}
	}

	again, err := db.DedupeWatchEvents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Groups != 0 || again.Removed != 0 || again.Remaining != 3 {
		t.Errorf("second run = %+v, want no-op", again)
	}
}

func TestDedupeWatchEvents_Empty(t *testing.T) {
	db := setupTestDB(t)

	result, err := db.DedupeWatchEvents(context.Background())
	if err != nil {
		t.Fatalf("DedupeWatchEvents() error = %v", err)
	}
	if result.Groups != 0 || result.Removed != 0 || result.Remaining != 0 {
		t.Errorf("result = %+v, want zeroes", result)
	}
	if result.RanAt.IsZero() {
		t.Error("RanAt should be set")
	}
}
