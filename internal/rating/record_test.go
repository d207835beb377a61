package rating

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestDecodeRecordEmpty(t *testing.T) {
	r, err := DecodeRecord(nil)
	if err != nil {
		t.Fatalf("DecodeRecord(nil): %v", err)
	}
	if len(r) != 0 {
		t.Fatalf("expected empty record, got %v", r)
	}
	if got := r.Get("G1").All; got != BaseScore {
		t.Fatalf("unseen group should read base score, got %d", got)
	}
}

func TestDecodeRecordLegacyNumbers(t *testing.T) {
	// early documents stored bare numbers instead of objects
	doc := []byte(`{"G1": 1250, "G2": {"all": 1180, "DMD": 1210}}`)
	r, err := DecodeRecord(doc)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}

	g1 := r.Get("G1")
	if g1.All != 1250 || len(g1.Categories) != 0 {
		t.Fatalf("legacy entry mis-normalized: %+v", g1)
	}

	g2 := r.Get("G2")
	if g2.All != 1180 || g2.Categories["DMD"] != 1210 {
		t.Fatalf("object entry mis-read: %+v", g2)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	r := Record{
		"G1": {All: 1216, Categories: map[string]int{"EM": 1232}},
		"G2": {All: 1184},
	}
	doc, err := EncodeRecord(r)
	if err != nil {
		t.Fatalf("EncodeRecord: %v", err)
	}

	back, err := DecodeRecord(doc)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if back.Get("G1").All != 1216 || back.Get("G1").Categories["EM"] != 1232 {
		t.Fatalf("G1 did not round-trip: %+v", back.Get("G1"))
	}
	if back.Get("G2").All != 1184 {
		t.Fatalf("G2 did not round-trip: %+v", back.Get("G2"))
	}
}

func TestEntryMarshalFlat(t *testing.T) {
	data, err := json.Marshal(Entry{All: 1200, Categories: map[string]int{"DMD": 1216}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]int
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal flat: %v", err)
	}
	if flat["all"] != 1200 || flat["DMD"] != 1216 || len(flat) != 2 {
		t.Fatalf("unexpected flat shape: %v", flat)
	}
}
