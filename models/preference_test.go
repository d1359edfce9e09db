package models

import (
	"reflect"
	"testing"
)

func TestCategoryWeights(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expectErr bool
		expected  map[string]float64
	}{
		{
			name:     "Valid weight map",
			raw:      `{"Road Bikes": 3, "E-Bikes": 1.5}`,
			expected: map[string]float64{"Road Bikes": 3, "E-Bikes": 1.5},
		},
		{
			name:     "Empty string decodes to empty map",
			raw:      "",
			expected: map[string]float64{},
		},
		{
			name:      "Malformed JSON is an error",
			raw:       `{"Road Bikes": `,
			expectErr: true,
		},
		{
			name:      "Wrong shape is an error",
			raw:       `["Road Bikes"]`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := UserPreference{FavoriteCategories: tt.raw}
			weights, err := pref.CategoryWeights()
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error for %q, got none", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(weights, tt.expected) {
				t.Errorf("CategoryWeights() = %v, expected %v", weights, tt.expected)
			}
		})
	}
}

func TestTopWeighted(t *testing.T) {
	weights := map[string]float64{
		"city": 1, "road": 5, "gravel": 3, "mountain": 3, "kids": 0.5,
	}

	got := TopWeighted(weights, 3)

	// gravel and mountain tie at 3 and must resolve lexically
	expected := []string{"road", "gravel", "mountain"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("TopWeighted() = %v, expected %v", got, expected)
	}

	if got := TopWeighted(map[string]float64{}, 3); len(got) != 0 {
		t.Errorf("empty map should produce no keys, got %v", got)
	}
}

func TestParseBudgetRange(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		min     float64
		max     float64
		ok      bool
	}{
		{name: "Valid range", raw: "500-1500", min: 500, max: 1500, ok: true},
		{name: "Range with spaces", raw: " 300 - 900 ", min: 300, max: 900, ok: true},
		{name: "Missing separator", raw: "500", ok: false},
		{name: "Non-numeric", raw: "cheap-expensive", ok: false},
		{name: "Inverted range", raw: "1500-500", ok: false},
		{name: "Empty", raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := OnboardingPreference{BudgetRange: tt.raw}
			min, max, ok := o.ParseBudgetRange()
			if ok != tt.ok {
				t.Fatalf("ParseBudgetRange(%q) ok = %v, expected %v", tt.raw, ok, tt.ok)
			}
			if ok && (min != tt.min || max != tt.max) {
				t.Errorf("ParseBudgetRange(%q) = (%v, %v), expected (%v, %v)", tt.raw, min, max, tt.min, tt.max)
			}
		})
	}
}

func TestInterestedCategories(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "Known tags map to vocabulary",
			raw:      `["road", "mountain"]`,
			expected: []string{"Road Bikes", "Mountain Bikes"},
		},
		{
			name:     "Unknown tags are dropped",
			raw:      `["road", "unicycle"]`,
			expected: []string{"Road Bikes"},
		},
		{
			name:     "Case and whitespace normalized, duplicates collapsed",
			raw:      `["Road", " ROAD ", "ebike"]`,
			expected: []string{"Road Bikes", "E-Bikes"},
		},
		{
			name:     "Empty field",
			raw:      "",
			expected: nil,
		},
		{
			name:     "Malformed JSON yields nothing",
			raw:      `["road"`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := OnboardingPreference{Interests: tt.raw}
			got := o.InterestedCategories()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("InterestedCategories(%q) = %v, expected %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestGetInteractionWeight(t *testing.T) {
	tests := []struct {
		interactionType string
		expected        float64
	}{
		{InteractionTypeView, 1.0},
		{InteractionTypeFavorite, 2.0},
		{InteractionTypeOffer, 3.0},
		{InteractionTypePurchase, 5.0},
		{"unknown", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.interactionType, func(t *testing.T) {
			if got := GetInteractionWeight(tt.interactionType); got != tt.expected {
				t.Errorf("GetInteractionWeight(%q) = %v, expected %v", tt.interactionType, got, tt.expected)
			}
		})
	}
}
