// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package models

import "testing"

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int
		wantErr bool
	}{
		{name: "int passes through", input: 42, want: 42},
		{name: "int64 from database scan", input: int64(7), want: 7},
		{name: "integral float64 from JSON", input: float64(13), want: 13},
		{name: "decimal string", input: "101", want: 101},
		{name: "string with whitespace", input: " 5 ", want: 5},
		{name: "fractional float rejected", input: 1.5, wantErr: true},
		{name: "non-numeric string rejected", input: "bourbon", wantErr: true},
		{name: "empty string rejected", input: "", wantErr: true},
		{name: "nil rejected", input: nil, wantErr: true},
		{name: "bool rejected", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CanonicalID(%v) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanonicalID(%v) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CanonicalID(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestIngredientIsRoot(t *testing.T) {
	root := Ingredient{ID: 1, Name: "Whiskey", ParentID: RootSentinel}
	if !root.IsRoot() {
		t.Error("ingredient with RootSentinel parent should be root")
	}

	child := Ingredient{ID: 2, Name: "Bourbon", ParentID: 1}
	if child.IsRoot() {
		t.Error("ingredient with a parent should not be root")
	}
}
