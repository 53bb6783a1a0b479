// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/sugoi/internal/models"
)

func TestRecordWatch_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	title := f.contents["Blade Dance"]

	first, created, err := db.RecordWatch(ctx, WatchInput{ProfileID: f.profile, ContentID: title, WatchedSeconds: 120})
	if err != nil {
		t.Fatalf("RecordWatch() error = %v", err)
	}
	if !created {
		t.Error("first RecordWatch should create a row")
	}

	second, created, err := db.RecordWatch(ctx, WatchInput{ProfileID: f.profile, ContentID: title, WatchedSeconds: 600})
	if err != nil {
		t.Fatalf("RecordWatch() repeat error = %v", err)
	}
	if created {
		t.Error("repeat RecordWatch should not create a row")
	}
	if second.ID != first.ID {
		t.Errorf("repeat id = %d, want %d", second.ID, first.ID)
	}
	if second.WatchedSeconds != 600 {
		t.Errorf("WatchedSeconds = %d, want the larger 600", second.WatchedSeconds)
	}

	third, _, err := db.RecordWatch(ctx, WatchInput{ProfileID: f.profile, ContentID: title, WatchedSeconds: 30})
	if err != nil {
		t.Fatal(err)
	}
	if third.WatchedSeconds != 600 {
		t.Errorf("WatchedSeconds shrank to %d", third.WatchedSeconds)
	}

	events, err := db.WatchEvents(ctx, f.profile)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("WatchEvents() = %d rows, want 1", len(events))
	}
}

func TestRecordWatch_EpisodesAreSeparateKeys(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	title := f.contents["Iron Heart"]

	ep1, _ := db.CreateEpisode(ctx, EpisodeInput{ContentID: title, Season: 1, Number: 1})
	ep2, _ := db.CreateEpisode(ctx, EpisodeInput{ContentID: title, Season: 1, Number: 2})

	for _, ep := range []*int64{nil, &ep1.ID, &ep2.ID, &ep1.ID} {
		if _, _, err := db.RecordWatch(ctx, WatchInput{ProfileID: f.profile, ContentID: title, EpisodeID: ep}); err != nil {
			t.Fatalf("RecordWatch() error = %v", err)
		}
	}

	events, err := db.WatchEvents(ctx, f.profile)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Errorf("WatchEvents() = %d rows, want 3 (no episode, ep1, ep2)", len(events))
	}
}

func TestRecordWatch_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	other := f.contents["Laugh Track"]
	ep, _ := db.CreateEpisode(ctx, EpisodeInput{ContentID: f.contents["Blade Dance"], Season: 1, Number: 1})

	tests := []struct {
		name    string
		in      WatchInput
		wantErr error
	}{
		{"negative seconds", WatchInput{ProfileID: f.profile, ContentID: other, WatchedSeconds: -1}, ErrInvalidInput},
		{"missing profile", WatchInput{ProfileID: 9999, ContentID: other}, models.ErrNotFound},
		{"missing content", WatchInput{ProfileID: f.profile, ContentID: 9999}, models.ErrNotFound},
		{"episode of another title", WatchInput{ProfileID: f.profile, ContentID: other, EpisodeID: &ep.ID}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := db.RecordWatch(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordWatch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetRating(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	title := f.contents["Tears of Spring"]

	if _, err := db.SetRating(ctx, f.profile, title, 2); err != nil {
		t.Fatalf("SetRating() error = %v", err)
	}
	if _, err := db.SetRating(ctx, f.profile, title, 5); err != nil {
		t.Fatalf("SetRating() overwrite error = %v", err)
	}

	r, err := db.GetRating(ctx, f.profile, title)
	if err != nil {
		t.Fatalf("GetRating() error = %v", err)
	}
	if r.Score != 5 {
		t.Errorf("Score = %d, want 5", r.Score)
	}

	n, err := count(ctx, db.conn, "SELECT COUNT(*) FROM ratings")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("ratings rows = %d, want 1", n)
	}

	for _, score := range []int{0, 6, -3} {
		if _, err := db.SetRating(ctx, f.profile, title, score); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SetRating(%d) error = %v, want ErrInvalidInput", score, err)
		}
	}
	if _, err := db.SetRating(ctx, 9999, title, 3); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("SetRating(missing profile) error = %v", err)
	}
	if _, err := db.GetRating(ctx, f.other, title); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetRating(unrated) error = %v", err)
	}
}

func TestLikeDislike(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	title := f.contents["Laugh Track"]

	liked, err := db.Like(ctx, f.profile, title)
	if err != nil {
		t.Fatal(err)
	}
	if !liked.IsLike() || liked.Score != models.ScoreLike {
		t.Errorf("Like() score = %d", liked.Score)
	}

	disliked, err := db.Dislike(ctx, f.profile, title)
	if err != nil {
		t.Fatal(err)
	}
	if !disliked.IsDislike() || disliked.Score != models.ScoreDislike {
		t.Errorf("Dislike() score = %d", disliked.Score)
	}
}

func TestFavorites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	title := f.contents["Quiet Shore"]

	created, err := db.AddFavorite(ctx, f.profile, title)
	if err != nil || !created {
		t.Fatalf("AddFavorite() = %v, %v", created, err)
	}
	created, err = db.AddFavorite(ctx, f.profile, title)
	if err != nil || created {
		t.Fatalf("AddFavorite() repeat = %v, %v; want false, nil", created, err)
	}

	favs, err := db.Favorites(ctx, f.profile)
	if err != nil || len(favs) != 1 {
		t.Fatalf("Favorites() = %v, %v", favs, err)
	}

	removed, err := db.RemoveFavorite(ctx, f.profile, title)
	if err != nil || !removed {
		t.Fatalf("RemoveFavorite() = %v, %v", removed, err)
	}
	removed, err = db.RemoveFavorite(ctx, f.profile, title)
	if err != nil || removed {
		t.Fatalf("RemoveFavorite() repeat = %v, %v; want false, nil", removed, err)
	}

	if _, err := db.AddFavorite(ctx, f.profile, 9999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("AddFavorite(missing content) error = %v", err)
	}
}
