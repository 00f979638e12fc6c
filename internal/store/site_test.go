// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"featherpress/internal/models"
)

func TestSettingStoreUpsertKeepsDescription(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewSettingStore(db)
	name := "test_" + t.Name()
	t.Cleanup(func() { s.Delete(ctx, name) })

	desc := "test setting"
	if err := s.Upsert(ctx, &models.Setting{Name: name, Value: "1", Type: models.SettingNumber, Description: &desc}); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	st := &models.Setting{Name: name, Value: "2", Type: models.SettingNumber}
	if err := s.Upsert(ctx, st); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if st.Description == nil || *st.Description != desc {
		t.Errorf("description: got %v, want %q", st.Description, desc)
	}

	got, err := s.Get(ctx, name)
	if err != nil || got == nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Typed() != float64(2) {
		t.Errorf("typed value: got %v", got.Typed())
	}

	removed, err := s.Delete(ctx, name)
	if err != nil || !removed {
		t.Errorf("Delete: %v, %v", removed, err)
	}
	removed, _ = s.Delete(ctx, name)
	if removed {
		t.Error("second delete should report nothing removed")
	}
}

func TestRegistryStoreSingleActiveTheme(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRegistryStore(db)

	themes, err := s.ListThemes(ctx)
	if err != nil {
		t.Fatalf("ListThemes: %v", err)
	}
	if len(themes) < 2 {
		t.Skip("need at least two themes")
	}
	var previous int64
	for _, th := range themes {
		if th.IsActive {
			previous = th.ID
		}
	}
	t.Cleanup(func() {
		if previous != 0 {
			s.ActivateTheme(ctx, previous)
		}
	})

	for _, th := range themes {
		if err := s.ActivateTheme(ctx, th.ID); err != nil {
			t.Fatalf("ActivateTheme: %v", err)
		}
		after, err := s.ListThemes(ctx)
		if err != nil {
			t.Fatalf("ListThemes: %v", err)
		}
		active := 0
		for _, a := range after {
			if a.IsActive {
				active++
				if a.ID != th.ID {
					t.Errorf("active theme: got %d, want %d", a.ID, th.ID)
				}
			}
		}
		if active != 1 {
			t.Errorf("active themes: got %d, want 1", active)
		}
	}
}

func TestRegistryStoreModuleStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewRegistryStore(db)

	mods, err := s.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	var cascade *models.Module
	for i := range mods {
		if mods[i].Name == "cascade" {
			cascade = &mods[i]
		}
	}
	if cascade == nil {
		t.Fatal("seeded cascade module missing")
	}
	if len(cascade.Conflicts) != 1 || cascade.Conflicts[0] != "pagination" {
		t.Errorf("conflicts: got %v", cascade.Conflicts)
	}

	original := cascade.Status
	t.Cleanup(func() { s.SetModuleStatus(ctx, cascade.ID, original) })
	if err := s.SetModuleStatus(ctx, cascade.ID, models.StatusEnabled); err != nil {
		t.Fatalf("SetModuleStatus: %v", err)
	}
	got, err := s.FindModule(ctx, cascade.ID)
	if err != nil || got == nil {
		t.Fatalf("FindModule: %v", err)
	}
	if got.Status != models.StatusEnabled {
		t.Errorf("status: got %q", got.Status)
	}
}
