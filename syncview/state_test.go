package syncview

import (
	"fmt"
	"testing"

	"go_client/core"
)

func configPage(page, totalPages, totalCount int, live bool, names ...string) []byte {
	data := ""
	for i, name := range names {
		if i > 0 {
			data += ","
		}
		data += fmt.Sprintf(`{"id":"id-%s","display_id":"%s","name":"%s","progress_percent":%d}`,
			name, name, name, i*10)
	}
	return []byte(fmt.Sprintf(
		`{"type":"data_update","data":[%s],"pagination":{"page":%d,"page_size":10,"total_pages":%d,"total_count":%d},"live_mode":%v}`,
		data, page, totalPages, totalCount, live))
}

func TestApplyReplacesStateWholesale(t *testing.T) {
	v := NewViewState[core.ConfigSummary](10, true)

	applied, err := v.Apply(configPage(1, 3, 25, true, "alpha", "beta"))
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !applied {
		t.Fatal("Expected data_update to be applied")
	}

	snap := v.Snapshot()
	if len(snap.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(snap.Records))
	}
	if snap.Records[0].Name != "alpha" {
		t.Errorf("Expected first record alpha, got %q", snap.Records[0].Name)
	}
	if snap.Pagination.TotalPages != 3 || snap.Pagination.TotalCount != 25 {
		t.Errorf("Unexpected pagination: %+v", snap.Pagination)
	}

	// Second push fully replaces the first - no merging
	applied, err = v.Apply(configPage(2, 4, 31, false, "gamma"))
	if err != nil || !applied {
		t.Fatalf("Second apply failed: applied=%v err=%v", applied, err)
	}

	snap = v.Snapshot()
	if len(snap.Records) != 1 || snap.Records[0].Name != "gamma" {
		t.Errorf("Expected page replaced with single gamma record, got %+v", snap.Records)
	}
	if snap.Pagination.Page != 2 || snap.Pagination.TotalPages != 4 {
		t.Errorf("Pagination not replaced: %+v", snap.Pagination)
	}
	if snap.LiveMode {
		t.Error("Expected live mode replaced with false")
	}
}

func TestApplyLastMessageWinsOverSequence(t *testing.T) {
	v := NewViewState[core.ConfigSummary](10, true)

	pushes := [][]byte{
		configPage(1, 5, 50, true, "a", "b", "c"),
		configPage(3, 5, 50, true, "x"),
		configPage(2, 6, 55, false, "m", "n"),
	}
	for i, p := range pushes {
		if _, err := v.Apply(p); err != nil {
			t.Fatalf("Apply %d failed: %v", i, err)
		}
	}

	// State equals exactly the final message's fields
	snap := v.Snapshot()
	if len(snap.Records) != 2 || snap.Records[0].Name != "m" {
		t.Errorf("Expected final page contents, got %+v", snap.Records)
	}
	if snap.Pagination.Page != 2 || snap.Pagination.TotalPages != 6 || snap.Pagination.TotalCount != 55 {
		t.Errorf("Expected final pagination, got %+v", snap.Pagination)
	}
	if snap.LiveMode {
		t.Error("Expected final live_mode=false")
	}
}

func TestApplyIgnoresUnknownMessageTypes(t *testing.T) {
	v := NewViewState[core.ConfigSummary](10, true)
	v.Apply(configPage(1, 2, 15, true, "alpha"))

	applied, err := v.Apply([]byte(`{"type":"response_detail","data":{"id":"x"}}`))
	if err != nil {
		t.Fatalf("Unknown type should not error: %v", err)
	}
	if applied {
		t.Error("Unknown type must be a no-op")
	}

	snap := v.Snapshot()
	if len(snap.Records) != 1 || snap.Records[0].Name != "alpha" {
		t.Error("State must be unchanged after ignored message")
	}
}

func TestApplyMalformedMessage(t *testing.T) {
	v := NewViewState[core.ConfigSummary](10, true)

	if _, err := v.Apply([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	// State stays at its initial values
	snap := v.Snapshot()
	if snap.Pagination.Page != 1 || len(snap.Records) != 0 {
		t.Errorf("State mutated by malformed message: %+v", snap)
	}
}

func TestApplyServerErrorEnvelope(t *testing.T) {
	v := NewViewState[core.SampleRecord](10, true)

	// Backend error shape: empty data, reset pagination, error string
	msg := []byte(`{"type":"data_update","data":[],"pagination":{"page":1,"page_size":10,"total_pages":1,"total_count":0},"error":"config not found"}`)
	applied, err := v.Apply(msg)
	if err != nil || !applied {
		t.Fatalf("Apply failed: applied=%v err=%v", applied, err)
	}

	snap := v.Snapshot()
	if snap.ServerError != "config not found" {
		t.Errorf("Expected server error surfaced, got %q", snap.ServerError)
	}
	if len(snap.Records) != 0 {
		t.Error("Expected empty page with error envelope")
	}
}

func TestApplySampleViewCarriesConfigHeader(t *testing.T) {
	v := NewViewState[core.SampleRecord](10, true)

	msg := []byte(`{"type":"data_update","data":[{"id":"s1","display_id":"s1","response_text":"hello"}],` +
		`"config":{"id":"c1","name":"emails","progress":{"completed":40,"total":100,"percent":40}},` +
		`"pagination":{"page":1,"page_size":10,"total_pages":4,"total_count":40}}`)
	if _, err := v.Apply(msg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	snap := v.Snapshot()
	if snap.Config == nil {
		t.Fatal("Expected config header")
	}
	if snap.Config.Name != "emails" || snap.Config.Progress.Percent != 40 {
		t.Errorf("Unexpected config header: %+v", snap.Config)
	}

	// Live mode absent from sample pushes - prior value retained
	if !snap.LiveMode {
		t.Error("Live mode must be retained when absent from the push")
	}
}
