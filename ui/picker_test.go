package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lectio-app/lectio/internal/lesson"
)

func newTestPicker() pickerModel {
	common := &commonModel{width: 80, height: 24, library: lesson.NewLibrary(nil)}
	m := newPickerModel(common)
	m.setSize(80, 24)
	m.setEntries(lesson.BuiltinIndex())
	return m
}

func TestPickerFilter(t *testing.T) {
	m := newTestPicker()
	if m.state != pickerStateReady || len(m.items) != 2 {
		t.Fatalf("Expected 2 ready items, got state %v with %d", m.state, len(m.items))
	}

	m.filterInput.SetValue("blind")
	m.applyFilter()
	if len(m.items) != 1 || m.items[0].entry.UnitID != "unit2" {
		t.Fatalf("Expected only unit2 to match, got %+v", m.items)
	}
	if len(m.items[0].matched) != 5 {
		t.Errorf("Expected 5 matched runes in the name, got %v", m.items[0].matched)
	}

	m.filterInput.SetValue("")
	m.applyFilter()
	if len(m.items) != 2 {
		t.Errorf("Expected the full list back, got %d", len(m.items))
	}
}

func TestPickerFilterKeys(t *testing.T) {
	m := newTestPicker()

	m, _ = m.update(keyPress("/"))
	if !m.typing() {
		t.Fatal("Expected / to start filtering")
	}
	for _, r := range "hong" {
		m, _ = m.update(keyPress(string(r)))
	}
	if m.filterInput.Value() != "hong" {
		t.Errorf("Expected filter text %q, got %q", "hong", m.filterInput.Value())
	}
	if len(m.items) != 1 || m.items[0].entry.UnitID != "unit1" {
		t.Errorf("Expected unit1 only, got %+v", m.items)
	}

	m, _ = m.update(keyPress(keyEsc))
	if m.typing() || m.filterInput.Value() != "" || len(m.items) != 2 {
		t.Error("Expected esc to clear the filter")
	}
}

func TestPickerCursor(t *testing.T) {
	m := newTestPicker()

	m, _ = m.update(keyPress("j"))
	m, _ = m.update(keyPress("j"))
	if m.cursor != 1 {
		t.Errorf("Expected the cursor clamped at 1, got %d", m.cursor)
	}
	m, _ = m.update(keyPress("g"))
	if m.cursor != 0 {
		t.Errorf("Expected the cursor at the top, got %d", m.cursor)
	}

	e, ok := m.selected()
	if !ok || e.UnitID != "unit1" {
		t.Errorf("Expected unit1 selected, got %+v", e)
	}
}

func TestPickerOpen(t *testing.T) {
	m := newTestPicker()
	m.common.loader = lesson.NewLoader(lesson.LoaderOptions{})

	m, cmd := m.update(keyPress("enter"))
	if cmd == nil || m.state != pickerStateOpening {
		t.Error("Expected enter to start opening the selected unit")
	}

	m, _ = m.update(keyPress("j"))
	if m.cursor != 0 {
		t.Error("Expected keys to be ignored while opening")
	}
}

func TestPickerImportPrompt(t *testing.T) {
	m := newTestPicker()

	m, _ = m.update(keyPress("o"))
	if m.state != pickerStateImporting {
		t.Fatal("Expected o to open the import prompt")
	}
	m, _ = m.update(keyPress("enter"))
	if m.state != pickerStateReady {
		t.Error("Expected an empty import to be dropped")
	}
}

func TestPickerView(t *testing.T) {
	m := newTestPicker()
	for _, e := range lesson.BuiltinIndex() {
		m.common.library.Add(e)
	}
	m.common.library.Add(lesson.IndexEntry{UnitID: "upload_1700000000123", UnitName: "Mine", DataURL: "/tmp/mine.json"})
	m.setEntries(m.common.library.Entries())

	v := m.view()
	for _, want := range []string{"Units", "3 units", "Blindbox", "Mine", "imported", "enter open"} {
		if !strings.Contains(v, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestNameRunes(t *testing.T) {
	name := "Unit 1 – Abc"
	got := nameRunes(name, []int{0, 11, 40})
	if want := []int{0, 9}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
