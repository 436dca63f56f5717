// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kthorn/cocktaildb-sub001/internal/models"
)

type staticProvider struct {
	snapshot *models.Snapshot
	err      error
}

func (p *staticProvider) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.snapshot, nil
}

func pipelineSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Ingredients: testCatalog(),
		Recipes: []models.Recipe{
			{ID: 100, Name: "Old Fashioned"},
			{ID: 200, Name: "Whiskey Sour"},
			{ID: 300, Name: "Gimlet"},
			{ID: 400, Name: "Garnish Plate"},
		},
		RecipeIngredients: []models.RecipeIngredient{
			{RecipeID: 100, IngredientID: 3, Amount: 60, Unit: "ml"},
			{RecipeID: 200, IngredientID: 4, Amount: 45, Unit: "ml"},
			{RecipeID: 200, IngredientID: 11, Amount: 25, Unit: "ml"},
			{RecipeID: 300, IngredientID: 5, Amount: 60, Unit: "ml"},
			{RecipeID: 300, IngredientID: 12, Amount: 30, Unit: "ml"},
			{RecipeID: 300, IngredientID: 12, Amount: 1, Unit: "wedge"},
			{RecipeID: 400, IngredientID: 12, Amount: 3, Unit: "wedge"},
		},
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Learner.MaxIterations = 5
	cfg.Projector.Iterations = 100

	p, err := NewPipeline(&staticProvider{snapshot: pipelineSnapshot()}, cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestPipelineRun(t *testing.T) {
	similar, embedding, err := testPipeline(t).Run(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Three recipes survive; the garnish-only one is excluded.
	if len(similar.Data) != 3 {
		t.Fatalf("similar artifact has %d recipes, want 3", len(similar.Data))
	}
	if len(embedding.Data) != 3 {
		t.Fatalf("embedding artifact has %d points, want 3", len(embedding.Data))
	}

	for i, want := range []int{100, 200, 300} {
		if similar.Data[i].RecipeID != want {
			t.Errorf("similar entry %d is recipe %d, want %d", i, similar.Data[i].RecipeID, want)
		}
		if embedding.Data[i].RecipeID != want {
			t.Errorf("embedding point %d is recipe %d, want %d", i, embedding.Data[i].RecipeID, want)
		}
	}

	for _, doc := range similar.Data {
		if len(doc.Neighbors) != 2 {
			t.Errorf("recipe %d has %d neighbors, want 2", doc.RecipeID, len(doc.Neighbors))
		}
		for _, nb := range doc.Neighbors {
			if nb.NeighborRecipeID == doc.RecipeID {
				t.Errorf("recipe %d lists itself as a neighbor", doc.RecipeID)
			}
			if nb.Distance < 0 {
				t.Errorf("negative neighbor distance: %+v", nb)
			}
		}
	}

	// Old Fashioned (straight whiskey) is closer to the Whiskey Sour
	// than to the Gimlet.
	of := similar.Data[0]
	if of.Neighbors[0].NeighborRecipeID != 200 {
		t.Errorf("nearest neighbor of recipe 100 is %d, want 200", of.Neighbors[0].NeighborRecipeID)
	}
}

func TestPipelineRunMetadata(t *testing.T) {
	before := time.Now().UTC()
	similar, embedding, err := testPipeline(t).Run(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sm, em := similar.Metadata, embedding.Metadata
	if sm.AnalyticsType != AnalyticsTypeSimilar {
		t.Errorf("similar analytics type = %q", sm.AnalyticsType)
	}
	if em.AnalyticsType != AnalyticsTypeEmbedding {
		t.Errorf("embedding analytics type = %q", em.AnalyticsType)
	}
	if sm.StorageVersion != StorageVersion || em.StorageVersion != StorageVersion {
		t.Error("storage version missing from metadata")
	}
	if sm.RunID == "" || sm.RunID != em.RunID {
		t.Errorf("run ids differ or empty: %q vs %q", sm.RunID, em.RunID)
	}
	if sm.GeneratedAt.Before(before) {
		t.Errorf("generated_at %v predates the run", sm.GeneratedAt)
	}
	if len(sm.ExcludedRecipeIDs) != 1 || sm.ExcludedRecipeIDs[0] != 400 {
		t.Errorf("excluded ids = %v, want [400]", sm.ExcludedRecipeIDs)
	}
}

func TestPipelineRunProviderError(t *testing.T) {
	wantErr := errors.New("database unavailable")
	p, err := NewPipeline(&staticProvider{err: wantErr}, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	_, _, err = p.Run(context.Background(), time.Time{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestPipelineRunInvalidHierarchy(t *testing.T) {
	snapshot := pipelineSnapshot()
	snapshot.Ingredients = append(snapshot.Ingredients, models.Ingredient{
		ID: 99, Name: "Orphan", ParentID: 1234,
	})

	p, err := NewPipeline(&staticProvider{snapshot: snapshot}, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	_, _, err = p.Run(context.Background(), time.Time{})
	var herr *HierarchyError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HierarchyError, got %v", err)
	}
}

func TestNewPipelineValidation(t *testing.T) {
	if _, err := NewPipeline(nil, nil); err == nil {
		t.Error("expected error for nil provider")
	}

	cfg := DefaultConfig()
	cfg.Neighbors = -1
	if _, err := NewPipeline(&staticProvider{}, cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestPipelineRunDeadline(t *testing.T) {
	// An already-expired deadline still yields complete artifacts from
	// the first learner iteration, flagged as not converged.
	similar, embedding, err := testPipeline(t).Run(context.Background(), time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if similar.Metadata.Converged {
		t.Error("deadline-bounded run must not report convergence")
	}
	if len(similar.Data) != 3 || len(embedding.Data) != 3 {
		t.Error("best-effort artifacts incomplete")
	}
}
