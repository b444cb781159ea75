package drug

import (
	"strings"
	"testing"
)

func acetaminophen() Record {
	return New(Fields{
		GenericName: "acetaminophen",
		BrandNames:  []string{"Tylenol", "Panadol"},
		Uses:        "fever relief and pain relief",
		Dosage:      "325-650 mg every 4-6 hours",
		Warnings:    "liver damage at high doses",
		SideEffects: "nausea",
		Sources:     []string{"FDA label", "NIH"},
		LastUpdated: "2024-01-15",
	})
}

func TestDisplayName_WithBrands(t *testing.T) {
	r := acetaminophen()
	got := r.DisplayName()
	want := "acetaminophen (brands: Tylenol, Panadol)"
	if got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
	if !strings.HasPrefix(got, "acetaminophen") {
		t.Error("display name must start with the generic name")
	}
}

func TestDisplayName_NoBrands(t *testing.T) {
	r := New(Fields{GenericName: "amoxicillin"})
	if got := r.DisplayName(); got != "amoxicillin" {
		t.Errorf("DisplayName() = %q, want %q", got, "amoxicillin")
	}
}

func TestText_CanonicalLayout(t *testing.T) {
	r := acetaminophen()
	want := "Name: acetaminophen (brands: Tylenol, Panadol)\n" +
		"Uses: fever relief and pain relief\n" +
		"Dosage: 325-650 mg every 4-6 hours\n" +
		"Warnings: liver damage at high doses\n" +
		"Side effects: nausea\n" +
		"Sources: FDA label, NIH\n" +
		"Last updated: 2024-01-15"
	if got := r.Text(); got != want {
		t.Errorf("Text() mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestText_Stable(t *testing.T) {
	a, b := acetaminophen(), acetaminophen()
	if a.Text() != b.Text() {
		t.Error("Text() must be reproducible for equal records")
	}
}

func TestNew_CopiesSlices(t *testing.T) {
	brands := []string{"Amoxil"}
	r := New(Fields{GenericName: "amoxicillin", BrandNames: brands})
	brands[0] = "mutated"

	if got := r.BrandNames()[0]; got != "Amoxil" {
		t.Errorf("record mutated through input slice: %q", got)
	}

	out := r.BrandNames()
	out[0] = "mutated"
	if got := r.BrandNames()[0]; got != "Amoxil" {
		t.Errorf("record mutated through accessor slice: %q", got)
	}
}
