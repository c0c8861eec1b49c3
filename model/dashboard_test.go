package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name       string
		cmd        Command
		firstParty bool
		want       []string
	}{
		{
			name: "check wasm",
			cmd:  Command{Kind: CommandCheck, Backend: BackendWasm},
			want: []string{"check", "-q", "--target", "wasm"},
		},
		{
			name: "check wasm-gc",
			cmd:  Command{Kind: CommandCheck, Backend: BackendWasmGC},
			want: []string{"check", "-q", "--target", "wasm-gc"},
		},
		{
			name: "build js",
			cmd:  Command{Kind: CommandBuild, Backend: BackendJS},
			want: []string{"build", "-q", "--target", "js"},
		},
		{
			name: "build native",
			cmd:  Command{Kind: CommandBuild, Backend: BackendNative},
			want: []string{"build", "-q", "--target", "native"},
		},
		{
			name:       "test first-party runs fully",
			cmd:        Command{Kind: CommandTest, Backend: BackendWasm},
			firstParty: true,
			want:       []string{"test", "-q", "--target", "wasm"},
		},
		{
			name: "test third-party is compile-only",
			cmd:  Command{Kind: CommandTest, Backend: BackendWasm},
			want: []string{"test", "-q", "--build-only", "--target", "wasm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cmd.Args(tt.firstParty)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSkipResult(t *testing.T) {
	r := SkipResult()
	if r.Status != StatusSkipped {
		t.Errorf("Status = %v, want %v", r.Status, StatusSkipped)
	}
	if r.StartTime != "" || r.Stdout != "" || r.Stderr != "" {
		t.Errorf("skip sentinel must have empty strings, got %+v", r)
	}
	if r.Elapsed != 0 {
		t.Errorf("Elapsed = %d, want 0", r.Elapsed)
	}
}

func TestNewSkippedCBT(t *testing.T) {
	cbt := NewSkippedCBT()
	for _, kind := range CommandKinds() {
		for _, backend := range DefaultRunningBackends() {
			got := cbt.State(kind).Get(backend)
			if got != SkipResult() {
				t.Errorf("%s/%s = %+v, want skip sentinel", kind, backend, got)
			}
		}
	}
}

func TestBackendStateSetGet(t *testing.T) {
	var state BackendState
	for _, backend := range []Backend{BackendWasm, BackendWasmGC, BackendJS, BackendNative} {
		state.Set(backend, ExecuteResult{Status: StatusSuccess, Stdout: backend.Flag()})
	}
	for _, backend := range []Backend{BackendWasm, BackendWasmGC, BackendJS, BackendNative} {
		got := state.Get(backend)
		if got.Stdout != backend.Flag() {
			t.Errorf("Get(%s).Stdout = %q, want %q", backend, got.Stdout, backend.Flag())
		}
	}
}

func TestFormatStartTime(t *testing.T) {
	// 12:00 UTC renders as 20:00 at the fixed +8 offset.
	ts := time.Date(2025, 3, 1, 12, 0, 0, 250e6, time.UTC)
	got := FormatStartTime(ts)
	require.Equal(t, "2025-03-01 20:00:00.250", got)
}

func TestDashboardJSONShape(t *testing.T) {
	dashboard := Dashboard{
		RunID:     "1",
		RunNumber: "2",
		StartTime: "2025-03-01T12:00:00Z",
		Sources: []Source{
			{Kind: SourceKindGit, URL: "https://example.com/x", Versions: []string{"main"}, Index: 0},
		},
		StableToolchainVersion: ToolChainVersion{Label: ToolChainStable, MoonVersion: "v1", MooncVersion: "v2"},
		StableReleaseData: []BuildState{
			{Source: 0, CBTs: []*CBT{nil, NewSkippedCBT()}},
		},
		BleedingToolchainVersion: ToolChainVersion{Label: ToolChainBleeding},
		BleedingReleaseData:      []BuildState{{Source: 0}},
	}

	data, err := json.Marshal(dashboard)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{
		"run_id", "run_number", "start_time", "sources",
		"stable_toolchain_version", "stable_release_data",
		"bleeding_toolchain_version", "bleeding_release_data",
	} {
		require.Contains(t, decoded, key)
	}

	stable := decoded["stable_release_data"].([]any)[0].(map[string]any)
	cbts := stable["cbts"].([]any)
	require.Nil(t, cbts[0], "failed fetch must serialize as null")
	require.NotNil(t, cbts[1])

	cbt := cbts[1].(map[string]any)
	check := cbt["check"].(map[string]any)
	for _, slot := range []string{"wasm", "wasm_gc", "js", "native"} {
		require.Contains(t, check, slot)
		require.Equal(t, "Skipped", check[slot].(map[string]any)["status"])
	}
}
