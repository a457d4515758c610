package services

import (
	"bytes"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

func TestAnonPage_ZeroFilledOnFirstClaim(t *testing.T) {
	vm := newTestMemory(t, 1, 1)
	as := newTestSpace(vm, 1)

	as.AllocatePage(KindAnon, codeBase, true)
	got := readUser(t, as, codeBase, models.PageSize)

	if !bytes.Equal(got, make([]byte, models.PageSize)) {
		t.Error("Expected a fresh anonymous page to be zero-filled")
	}
}

func TestAnonPage_SwapRoundTrip(t *testing.T) {
	vm := newTestMemory(t, 1, 4)
	as := newTestSpace(vm, 1)

	a, b := codeBase, codeBase+models.PageSize
	as.AllocatePage(KindAnon, a, true)
	as.AllocatePage(KindAnon, b, true)

	writeUser(t, as, a+100, []byte("hola"))

	// Con un solo frame, reclamar b desaloja a
	if err := as.ClaimPage(b); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, resident := vm.Frames.Resident(as.spt.Find(a)); resident {
		t.Fatal("Expected page a to be evicted")
	}
	if vm.Swap.Used() != 1 {
		t.Errorf("Expected 1 slot used, got %d", vm.Swap.Used())
	}

	got := readUser(t, as, a+100, 4)
	if string(got) != "hola" {
		t.Errorf("Expected 'hola' after swap in, got %q", string(got))
	}

	// a volvió (su slot se liberó) y b ocupa ahora el swap
	if vm.Swap.Used() != 1 {
		t.Errorf("Expected 1 slot used after swap in, got %d", vm.Swap.Used())
	}
	if as.Metrics.SwapsIn.Load() != 1 {
		t.Errorf("Expected 1 swap in, got %d", as.Metrics.SwapsIn.Load())
	}

	as.Destroy()
	if vm.Swap.Used() != 0 {
		t.Errorf("Expected destroy to free every slot, got %d used", vm.Swap.Used())
	}
}

func TestAnonPage_CustomLoader(t *testing.T) {
	vm := newTestMemory(t, 1, 1)
	as := newTestSpace(vm, 1)

	calls := 0
	loader := func(page *Page, kva []byte, aux *Segment) error {
		calls++
		copy(kva, "cargado")
		return nil
	}
	if err := as.AllocateLazyPage(KindAnon, codeBase, true, loader, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if calls != 0 {
		t.Error("Expected loader not to run before the first access")
	}

	got := readUser(t, as, codeBase, 7)
	if string(got) != "cargado" || calls != 1 {
		t.Errorf("Expected loader to run once, got %q after %d calls", string(got), calls)
	}
}
