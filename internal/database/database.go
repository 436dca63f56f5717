// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

// Package database reads the recipe catalog snapshot from DuckDB.
//
// The pipeline never writes to this store: the connection is opened
// read-only, and the three snapshot queries are the package's whole
// surface. Identifier canonicalization (models.CanonicalID) happens here,
// at the scan boundary, because the source schema stores ids as INTEGER
// in some deployments and TEXT in others.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb database/sql driver

	"github.com/kthorn/cocktaildb-sub001/internal/logging"
	"github.com/kthorn/cocktaildb-sub001/internal/models"
)

// Config configures the DuckDB connection.
type Config struct {
	// Path is the DuckDB database file. Empty opens an in-memory
	// database (tests only).
	Path string

	// MaxMemory is the DuckDB memory limit, e.g. "1GB".
	MaxMemory string

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int

	// ReadOnly opens the database in read-only mode. The pipeline
	// always sets this; tests that seed fixture data do not.
	ReadOnly bool
}

// DB wraps the DuckDB connection serving snapshot reads.
type DB struct {
	conn *sql.DB
	cfg  Config
}

// Open establishes the DuckDB connection and verifies it with a ping.
func Open(cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	connStr := cfg.Path
	sep := "?"
	if cfg.ReadOnly {
		connStr += sep + "access_mode=read_only"
		sep = "&"
	}
	connStr += fmt.Sprintf("%sthreads=%d", sep, threads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Bool("read_only", cfg.ReadOnly).Msg("duckdb connection established")

	return &DB{conn: conn, cfg: cfg}, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying connection for test fixtures.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// GetIngredients returns the full ingredient catalog ordered by id.
func (db *DB) GetIngredients(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, parent_id, allow_substitution
		FROM ingredients
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Ingredient
	for rows.Next() {
		var (
			rawID     any
			name      string
			rawParent any
			allowSub  sql.NullBool
		)
		if err := rows.Scan(&rawID, &name, &rawParent, &allowSub); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}

		id, err := models.CanonicalID(rawID)
		if err != nil {
			return nil, fmt.Errorf("ingredient id: %w", err)
		}

		parentID := models.RootSentinel
		if rawParent != nil {
			parentID, err = models.CanonicalID(rawParent)
			if err != nil {
				return nil, fmt.Errorf("ingredient %d parent id: %w", id, err)
			}
		}

		out = append(out, models.Ingredient{
			ID:                id,
			Name:              name,
			ParentID:          parentID,
			AllowSubstitution: allowSub.Valid && allowSub.Bool,
		})
	}
	return out, rows.Err()
}

// GetRecipes returns the recipe catalog ordered by id.
func (db *DB) GetRecipes(ctx context.Context) ([]models.Recipe, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Recipe
	for rows.Next() {
		var (
			rawID any
			name  string
		)
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		id, err := models.CanonicalID(rawID)
		if err != nil {
			return nil, fmt.Errorf("recipe id: %w", err)
		}
		out = append(out, models.Recipe{ID: id, Name: name})
	}
	return out, rows.Err()
}

// GetRecipeIngredients returns all recipe-ingredient rows ordered by
// (recipe_id, ingredient_id).
func (db *DB) GetRecipeIngredients(ctx context.Context) ([]models.RecipeIngredient, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT recipe_id, ingredient_id, amount, unit
		FROM recipe_ingredients
		ORDER BY recipe_id, ingredient_id`)
	if err != nil {
		return nil, fmt.Errorf("query recipe_ingredients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RecipeIngredient
	for rows.Next() {
		var (
			rawRecipe     any
			rawIngredient any
			amount        sql.NullFloat64
			unit          sql.NullString
		)
		if err := rows.Scan(&rawRecipe, &rawIngredient, &amount, &unit); err != nil {
			return nil, fmt.Errorf("scan recipe_ingredient: %w", err)
		}

		recipeID, err := models.CanonicalID(rawRecipe)
		if err != nil {
			return nil, fmt.Errorf("recipe_ingredient recipe id: %w", err)
		}
		ingredientID, err := models.CanonicalID(rawIngredient)
		if err != nil {
			return nil, fmt.Errorf("recipe %d ingredient id: %w", recipeID, err)
		}

		out = append(out, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredientID,
			Amount:       amount.Float64,
			Unit:         unit.String,
		})
	}
	return out, rows.Err()
}

// LoadSnapshot reads the complete read-only input for one pipeline run.
func (db *DB) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	ingredients, err := db.GetIngredients(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := db.GetRecipes(ctx)
	if err != nil {
		return nil, err
	}
	recipeIngredients, err := db.GetRecipeIngredients(ctx)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Int("ingredients", len(ingredients)).
		Int("recipes", len(recipes)).
		Int("recipe_ingredients", len(recipeIngredients)).
		Msg("snapshot loaded")

	return &models.Snapshot{
		Ingredients:       ingredients,
		Recipes:           recipes,
		RecipeIngredients: recipeIngredients,
	}, nil
}
