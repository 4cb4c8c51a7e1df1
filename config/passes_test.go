package config

import (
	"encoding/json"
	"testing"
)

func TestPassListMarshalJSON(t *testing.T) {
	passes := PassList{
		ObscureConstants{},
		LoopEncodeSemantics{
			Iterations:  3,
			Probability: 100,
			Semantics:   Semantics{Add: true, Sub: true},
			BitWidths:   BitWidths{Bit32: true},
		},
	}
	data, e := json.Marshal(passes)
	if e != nil {
		t.Fatalf("marshal: %v", e)
	}

	var decoded []map[string]interface{}
	if e := json.Unmarshal(data, &decoded); e != nil {
		t.Fatalf("unmarshal: %v", e)
	}
	if len(decoded) != 2 {
		t.Fail()
	}
	if decoded[0]["type"] != "ObscureConstants" {
		t.Fail()
	}
	// unit variants carry only the tag
	if len(decoded[0]) != 1 {
		t.Fail()
	}
	if decoded[1]["type"] != "LoopEncodeSemantics" {
		t.Fail()
	}
	if decoded[1]["iterations"] != float64(3) {
		t.Fail()
	}
	semantics, ok := decoded[1]["semantics"].(map[string]interface{})
	if !ok {
		t.Fail()
	} else if semantics["add"] != true {
		t.Fail()
	}
}

func TestCompiledMarshalJSON(t *testing.T) {
	compiled := Compiled{
		ModuleSettings: ModuleSettings{IDACrasher: true},
		Profiles: []CompiledProfile{{
			Name:    "hot",
			Passes:  PassList{ObscureControlFlow{}},
			Symbols: []uint64{0x1000, 0x2000},
		}},
	}
	data, e := json.Marshal(&compiled)
	if e != nil {
		t.Fatalf("marshal: %v", e)
	}

	var decoded struct {
		ModuleSettings struct {
			IDACrasher bool `json:"ida_crasher"`
		} `json:"module_settings"`
		Profiles []struct {
			Name    string                   `json:"name"`
			Passes  []map[string]interface{} `json:"passes"`
			Symbols []uint64                 `json:"symbols"`
		} `json:"profiles"`
	}
	if e := json.Unmarshal(data, &decoded); e != nil {
		t.Fatalf("unmarshal: %v", e)
	}
	if !decoded.ModuleSettings.IDACrasher {
		t.Fail()
	}
	if len(decoded.Profiles) != 1 {
		t.Fail()
	}
	if decoded.Profiles[0].Name != "hot" {
		t.Fail()
	}
	if decoded.Profiles[0].Passes[0]["type"] != "ObscureControlFlow" {
		t.Fail()
	}
	if len(decoded.Profiles[0].Symbols) != 2 {
		t.Fail()
	}
}
