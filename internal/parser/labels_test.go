package parser

import (
	"testing"

	"pharmacrawl/internal/types"
)

func TestLabelExtraction(t *testing.T) {
	page := `Panadol Extra 500mg
SKU: PND-500-24
Manufacturer: GSK Pakistan
Composition: Paracetamol 500mg, Caffeine 65mg
Dosage: 1-2 tablets every 6 hours
Delivery: within 24 hours in Karachi
15 in stock
142 reviews`

	if got := SKU(page); got != "PND-500-24" {
		t.Errorf("SKU = %q", got)
	}
	if got := Manufacturer(page); got != "GSK Pakistan" {
		t.Errorf("Manufacturer = %q", got)
	}
	if got := Ingredients(page); got != "Paracetamol 500mg, Caffeine 65mg" {
		t.Errorf("Ingredients = %q", got)
	}
	if got := Dosage(page); got != "1-2 tablets every 6 hours" {
		t.Errorf("Dosage = %q", got)
	}
	if got := DeliveryInfo(page); got != "within 24 hours in Karachi" {
		t.Errorf("DeliveryInfo = %q", got)
	}
	if qty, ok := StockQuantity(page); !ok || qty != 15 {
		t.Errorf("StockQuantity = %d, %v", qty, ok)
	}
	if got := ReviewCount(page); got != 142 {
		t.Errorf("ReviewCount = %d", got)
	}
}

func TestLabelExtractionMissing(t *testing.T) {
	page := "A product page with none of the usual labels."

	if got := SKU(page); got != "" {
		t.Errorf("SKU = %q, want empty", got)
	}
	if got := Manufacturer(page); got != "" {
		t.Errorf("Manufacturer = %q, want empty", got)
	}
	if _, ok := StockQuantity(page); ok {
		t.Error("StockQuantity matched without a quantity")
	}
	if got := ReviewCount(page); got != 0 {
		t.Errorf("ReviewCount = %d, want 0", got)
	}
}

func TestInStock(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Add to cart", true},
		{"Currently Out of Stock", false},
		{"This item is SOLD OUT", false},
		{"Not available in your city", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := InStock(tt.text); got != tt.want {
			t.Errorf("InStock(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestPrescriptionRequired(t *testing.T) {
	if !PrescriptionRequired("Prescription Required for this medicine") {
		t.Error("expected prescription flag")
	}
	if PrescriptionRequired("Over the counter pain relief") {
		t.Error("unexpected prescription flag")
	}
}

func TestInferForm(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		description string
		pageText    string
		want        types.MedicineForm
	}{
		{
			name:        "from product name",
			productName: "Panadol 500mg Tablets",
			want:        types.FormTablet,
		},
		{
			name:        "from description",
			description: "Sugar-free cough syrup for children",
			want:        types.FormSyrup,
		},
		{
			name:     "explicit label wins",
			pageText: "Form: Capsule",
			want:     types.FormCapsule,
		},
		{
			name:        "label beats name keywords",
			productName: "Brufen Tablets",
			pageText:    "Form: Syrup",
			want:        types.FormSyrup,
		},
		{
			name:        "injection vial",
			productName: "Insulin 10ml vial",
			want:        types.FormInjection,
		},
		{
			name:        "topical",
			productName: "Hydrocortisone ointment 1%",
			want:        types.FormCream,
		},
		{
			name: "unknown",
			want: types.FormUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferForm(tt.productName, tt.description, tt.pageText)
			if got != tt.want {
				t.Errorf("InferForm = %q, want %q", got, tt.want)
			}
		})
	}
}
