package mmu

import (
	"errors"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

const va uintptr = 0x10000000

func TestPageMap_TranslateSetsBits(t *testing.T) {
	pm := NewPageMap()
	if !pm.SetPage(va, 7, true) {
		t.Fatalf("Expected SetPage to succeed")
	}

	frame, err := pm.Translate(va+0x10, false)
	if err != nil || frame != 7 {
		t.Fatalf("Expected frame 7, got %d (%v)", frame, err)
	}
	if !pm.IsAccessed(va) {
		t.Errorf("Expected accessed bit after read")
	}
	if pm.IsDirty(va) {
		t.Errorf("Expected clean page after read")
	}

	if _, err := pm.Translate(va+models.PageSize-1, true); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !pm.IsDirty(va) {
		t.Errorf("Expected dirty bit after write")
	}

	pm.SetAccessed(va, false)
	pm.SetDirty(va, false)
	if pm.IsAccessed(va) || pm.IsDirty(va) {
		t.Errorf("Expected bits to be cleared")
	}
}

func TestPageMap_Faults(t *testing.T) {
	pm := NewPageMap()

	_, err := pm.Translate(va, false)
	var fault *Fault
	if !errors.As(err, &fault) || !fault.NotPresent {
		t.Fatalf("Expected not-present fault, got %v", err)
	}

	pm.SetPage(va, 1, false)
	_, err = pm.Translate(va, true)
	if !errors.As(err, &fault) || fault.NotPresent {
		t.Fatalf("Expected protection fault, got %v", err)
	}
}

func TestPageMap_SetPageRejects(t *testing.T) {
	pm := NewPageMap()

	if pm.SetPage(va+1, 0, true) {
		t.Errorf("Expected unaligned address to be rejected")
	}
	if pm.SetPage(models.KernBase, 0, true) {
		t.Errorf("Expected kernel address to be rejected")
	}
	if !pm.SetPage(va, 0, true) || pm.SetPage(va, 1, true) {
		t.Errorf("Expected duplicate mapping to be rejected")
	}

	pm.ClearPage(va)
	if _, ok := pm.GetPage(va); ok {
		t.Errorf("Expected page to be cleared")
	}
	if pm.Len() != 0 {
		t.Errorf("Expected empty page map, got %d entries", pm.Len())
	}
}
