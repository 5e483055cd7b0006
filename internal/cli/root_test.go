package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/shopfloor/internal/version"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := RootCmd()

	for _, path := range [][]string{
		{"mo", "create"}, {"mo", "list"}, {"mo", "show"}, {"mo", "confirm"}, {"mo", "complete"}, {"mo", "cancel"},
		{"wo", "list"}, {"wo", "show"}, {"wo", "start"}, {"wo", "pause"}, {"wo", "resume"}, {"wo", "complete"}, {"wo", "watch"},
		{"stock", "ledger"}, {"log", "list"}, {"log", "prune"},
		{"product", "create"}, {"workcenter", "list"}, {"bom", "add-operation"},
		{"init"}, {"seed"}, {"serve"}, {"status"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd == root {
			t.Errorf("command %q not found (err: %v)", strings.Join(path, " "), err)
		}
	}
}

func TestVersionCmd_SkipsBootstrap(t *testing.T) {
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), version.String()) {
		t.Errorf("output %q does not contain version string", out.String())
	}
}

func TestWorkOrderCmd_RejectsShortIDs(t *testing.T) {
	cmd := WorkOrderCmd()
	cmd.SetArgs([]string{"start", "7"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "WO-7") {
		t.Errorf("expected a hint to use WO-7, got %v", err)
	}
}
