package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/picogrid/uav-deconfliction/pkg/deconfliction"
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "missions.db")
	s, err := New(dbPath, Options{})
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMission(t *testing.T, id string, start, end time.Duration) *models.Mission {
	t.Helper()
	m, err := models.NewMission(id, []models.Waypoint{
		models.NewWaypoint(1.25, -2.5, 30, t0.Add(start)),
		models.NewWaypoint(100, 200, 120.75, t0.Add(end)),
	}, t0.Add(start), t0.Add(end))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSaveAndGetMission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := testMission(t, "sim1", 0, 10*time.Minute)

	if err := s.SaveMission(ctx, m); err != nil {
		t.Fatalf("SaveMission: %v", err)
	}

	got, err := s.GetMission(ctx, "sim1")
	if err != nil {
		t.Fatalf("GetMission: %v", err)
	}
	if got.Fingerprint() != m.Fingerprint() {
		t.Errorf("stored mission differs from the original")
	}
	if !got.StartTime().Equal(m.StartTime()) || got.WaypointCount() != 2 {
		t.Errorf("got %v, want %v", got, m)
	}
}

func TestSaveMission_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMission(ctx, testMission(t, "sim1", 0, time.Minute)); err != nil {
		t.Fatal(err)
	}
	err := s.SaveMission(ctx, testMission(t, "sim1", time.Hour, 2*time.Hour))
	if !errors.Is(err, deconfliction.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestSaveMissions_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMission(ctx, testMission(t, "b", 0, time.Minute)); err != nil {
		t.Fatal(err)
	}
	err := s.SaveMissions(ctx, []*models.Mission{
		testMission(t, "a", 0, time.Minute),
		testMission(t, "b", 0, time.Minute),
	})
	if !errors.Is(err, deconfliction.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected failed batch to be rolled back, got %d missions", n)
	}
}

func TestGetMission_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetMission(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SaveMission(ctx, testMission(t, "sim1", 0, time.Minute)); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteMission(ctx, "sim1"); err != nil {
		t.Fatalf("DeleteMission: %v", err)
	}
	if err := s.DeleteMission(ctx, "sim1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLoadMissionsAndOverlapping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.SaveMissions(ctx, []*models.Mission{
		testMission(t, "late", 2*time.Hour, 3*time.Hour),
		testMission(t, "early", 0, 10*time.Minute),
		testMission(t, "touching", 30*time.Minute, time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	all, err := s.LoadMissions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID() != "early" || all[2].ID() != "touching" {
		t.Fatalf("expected missions ordered by id, got %v", all)
	}

	overlapping, err := s.LoadOverlapping(ctx, t0.Add(10*time.Minute), t0.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(overlapping) != 2 || overlapping[0].ID() != "early" || overlapping[1].ID() != "touching" {
		t.Fatalf("expected endpoint-inclusive overlap, got %v", overlapping)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].CreatedAt.IsZero() {
		t.Errorf("expected created_at to be recorded")
	}
}

func TestStoreFeedsEngine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := s.SaveMission(ctx, testMission(t, fmt.Sprintf("sim-%02d", i), 0, time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	missions, err := s.LoadMissions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cfg := deconfliction.DefaultConfig()
	cfg.MaxMissions = 10
	e, err := deconfliction.NewEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	n, err := e.RegisterAll(missions)
	if n != 10 || !errors.Is(err, deconfliction.ErrCapacityExceeded) {
		t.Fatalf("expected capacity to stop registration at 10, got %d, %v", n, err)
	}
}

func TestConcurrentWriters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.SaveMission(ctx, testMission(t, fmt.Sprintf("w-%02d", i), 0, time.Minute))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent save: %v", err)
		}
	}
	if n, _ := s.Count(ctx); n != 40 {
		t.Fatalf("expected 40 missions, got %d", n)
	}
}
