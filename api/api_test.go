package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dan0xE/api/analysis"
	"github.com/Dan0xE/api/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, e := NewWithBaseURL("secret-key", server.URL)
	if e != nil {
		t.Fatalf("client: %v", e)
	}
	return client, server
}

func TestUpload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fail()
		}
		if r.URL.Path != "/upload" {
			t.Fail()
		}
		if r.Header.Get("Authorization") != "ApiKey secret-key" {
			t.Fail()
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "MZ\x90\x00" {
			t.Fail()
		}
		io.WriteString(w, "file-uuid-1\n")
	})

	id, e := client.Upload([]byte("MZ\x90\x00"))
	if e != nil {
		t.Fatalf("upload: %v", e)
	}
	if id != "file-uuid-1" {
		t.Fail()
	}
}

func TestUploadServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad api key", http.StatusUnauthorized)
	})

	_, e := client.Upload([]byte("MZ"))
	if e == nil {
		t.Fail()
	}
}

func TestAnalyze(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Fail()
		}
		var req struct {
			File string `json:"file"`
			PDB  string `json:"pdb"`
		}
		if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
			t.Fail()
		}
		if req.File != "file-uuid-1" || req.PDB != "pdb-uuid-1" {
			t.Fail()
		}
		json.NewEncoder(w).Encode(analysis.Result{
			Environment: analysis.KernelMode,
			Functions: []analysis.Function{
				{RVA: 0x1000, Symbol: "DriverEntry", RefCount: 1},
			},
			Rejects: []analysis.Reject{
				{RVA: 0x2000, Symbol: "patcher", Type: "ReadWriteToCode", Reason: "writes to code"},
			},
			Macros: []analysis.MacroProfile{
				{Name: "hot", RVAs: []uint64{0x1000}},
			},
		})
	})

	result, e := client.Analyze("file-uuid-1", "pdb-uuid-1")
	if e != nil {
		t.Fatalf("analyze: %v", e)
	}
	if result.Environment != analysis.KernelMode {
		t.Fail()
	}
	if len(result.Functions) != 1 || result.Functions[0].Symbol != "DriverEntry" {
		t.Fail()
	}
	if len(result.Rejects) != 1 || result.Rejects[0].Type != analysis.RejectReadWriteToCode {
		t.Fail()
	}
	if len(result.Macros) != 1 || result.Macros[0].Name != "hot" {
		t.Fail()
	}
}

func TestDefend(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/defend" {
			t.Fail()
		}
		var req struct {
			File   string `json:"file"`
			Config struct {
				Profiles []struct {
					Name    string   `json:"name"`
					Symbols []uint64 `json:"symbols"`
				} `json:"profiles"`
			} `json:"config"`
		}
		if e := json.NewDecoder(r.Body).Decode(&req); e != nil {
			t.Fail()
		}
		if req.File != "file-uuid-1" {
			t.Fail()
		}
		if len(req.Config.Profiles) != 1 || req.Config.Profiles[0].Name != "hot" {
			t.Fail()
		}
		io.WriteString(w, "execution-uuid-1")
	})

	compiled := &config.Compiled{
		Profiles: []config.CompiledProfile{
			{Name: "hot", Symbols: []uint64{0x1000}},
		},
	}
	id, e := client.Defend("file-uuid-1", compiled)
	if e != nil {
		t.Fatalf("defend: %v", e)
	}
	if id != "execution-uuid-1" {
		t.Fail()
	}
}

func TestDownloadReady(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download" {
			t.Fail()
		}
		if r.URL.Query().Get("id") != "execution-uuid-1" {
			t.Fail()
		}
		w.Write([]byte("obfuscated bytes"))
	})

	status, e := client.Download("execution-uuid-1")
	if e != nil {
		t.Fatalf("download: %v", e)
	}
	if status.State != StateReady {
		t.Fail()
	}
	if string(status.Bytes) != "obfuscated bytes" {
		t.Fail()
	}
}

func TestDownloadProcessing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	status, e := client.Download("execution-uuid-1")
	if e != nil {
		t.Fatalf("download: %v", e)
	}
	if status.State != StateProcessing {
		t.Fail()
	}
}

func TestDownloadFailed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "lifting failed at 0x1234", http.StatusUnprocessableEntity)
	})

	status, e := client.Download("execution-uuid-1")
	if e != nil {
		t.Fatalf("download: %v", e)
	}
	if status.State != StateFailed {
		t.Fail()
	}
	if status.Cause != "lifting failed at 0x1234" {
		t.Fail()
	}
}
