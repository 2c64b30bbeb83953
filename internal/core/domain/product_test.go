package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestProduct_Validate(t *testing.T) {
	ok := Product{Name: "Hammer", Price: 250, Category: "Tools"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Product{
		{Price: 250, Category: "Tools"},
		{Name: "Hammer", Price: 250},
		{Name: "Hammer", Price: -1, Category: "Tools"},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation for %+v, got %v", p, err)
		}
	}
}

func TestProductPatch_Apply(t *testing.T) {
	p := Product{Name: "Hammer", Price: 250, Category: "Tools", Description: "steel"}
	price := int64(300)
	patch := ProductPatch{Price: &price}

	if patch.Empty() {
		t.Fatal("patch with a price must not be empty")
	}
	patch.Apply(&p)

	if p.Price != 300 || p.Name != "Hammer" || p.Description != "steel" {
		t.Fatalf("unexpected merge result: %+v", p)
	}
	if !(ProductPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
}

func TestCategories_Distinct(t *testing.T) {
	products := []Product{
		{Category: "Tools"},
		{Category: "Power Tools"},
		{Category: "Tools"},
		{Category: "Electrical"},
	}
	got := Categories(products)
	if want := []string{"Tools", "Power Tools", "Electrical"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := Categories(nil); len(got) != 0 {
		t.Fatalf("expected empty categories, got %v", got)
	}
}
