package drug

import "strings"

// Record is a single drug-information entry (immutable value object).
// Identity is positional: the index of the record in the loaded corpus.
type Record struct {
	genericName string
	brandNames  []string
	uses        string
	dosage      string
	warnings    string
	sideEffects string
	sources     []string
	lastUpdated string
}

// Fields holds raw record values for construction.
type Fields struct {
	GenericName string
	BrandNames  []string
	Uses        string
	Dosage      string
	Warnings    string
	SideEffects string
	Sources     []string
	LastUpdated string
}

// New creates a Record, copying the slices so the caller cannot mutate it.
func New(f Fields) Record {
	return Record{
		genericName: f.GenericName,
		brandNames:  cloneStrings(f.BrandNames),
		uses:        f.Uses,
		dosage:      f.Dosage,
		warnings:    f.Warnings,
		sideEffects: f.SideEffects,
		sources:     cloneStrings(f.Sources),
		lastUpdated: f.LastUpdated,
	}
}

// GenericName returns the primary (generic) drug name.
func (r Record) GenericName() string { return r.genericName }

// BrandNames returns a copy of the alternate brand names.
func (r Record) BrandNames() []string { return cloneStrings(r.brandNames) }

// Uses returns the usage text.
func (r Record) Uses() string { return r.uses }

// Dosage returns the dosage text.
func (r Record) Dosage() string { return r.dosage }

// Warnings returns the warnings text.
func (r Record) Warnings() string { return r.warnings }

// SideEffects returns the side-effects text.
func (r Record) SideEffects() string { return r.sideEffects }

// Sources returns a copy of the citation sources.
func (r Record) Sources() []string { return cloneStrings(r.sources) }

// LastUpdated returns the opaque last-update marker.
func (r Record) LastUpdated() string { return r.lastUpdated }

// DisplayName returns the generic name followed by the brand names, if any.
func (r Record) DisplayName() string {
	if len(r.brandNames) == 0 {
		return r.genericName
	}
	return r.genericName + " (brands: " + strings.Join(r.brandNames, ", ") + ")"
}

// Text renders the canonical multi-line representation used for tokenization
// and for the grounding context. The layout is part of the index contract.
func (r Record) Text() string {
	var b strings.Builder
	b.WriteString("Name: ")
	b.WriteString(r.DisplayName())
	b.WriteString("\nUses: ")
	b.WriteString(r.uses)
	b.WriteString("\nDosage: ")
	b.WriteString(r.dosage)
	b.WriteString("\nWarnings: ")
	b.WriteString(r.warnings)
	b.WriteString("\nSide effects: ")
	b.WriteString(r.sideEffects)
	b.WriteString("\nSources: ")
	b.WriteString(strings.Join(r.sources, ", "))
	b.WriteString("\nLast updated: ")
	b.WriteString(r.lastUpdated)
	return b.String()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
