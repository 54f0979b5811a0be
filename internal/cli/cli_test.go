package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, db string, args ...string) []byte {
	t.Helper()
	out, stderr, err := runCLI(t, append([]string{"--db", db}, args...))
	if err != nil {
		t.Fatalf("tierctl %s: %v\nstderr:\n%s", strings.Join(args, " "), err, string(stderr))
	}
	return out
}

func seedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "cli.db")
	for _, tier := range []string{"S", "A", "B"} {
		mustRun(t, db, "tier", "add", tier, "--color", "#ff7f7f")
	}
	mustRun(t, db, "item", "add", "x", "--tier", "S")
	mustRun(t, db, "item", "add", "y", "--tier", "A")
	mustRun(t, db, "item", "add", "z", "--tier", "B")
	mustRun(t, db, "item", "add", "w")
	return db
}

func itemOrder(t *testing.T, db string) []string {
	t.Helper()
	var items []models.Item
	if err := json.Unmarshal(mustRun(t, db, "--json", "item", "ls"), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func TestTierMove_ReordersItems(t *testing.T) {
	db := seedDB(t)

	out := mustRun(t, db, "tier", "move", "B", "up")
	if !strings.Contains(string(out), "moved tier B up") {
		t.Fatalf("unexpected output: %q", out)
	}

	got := strings.Join(itemOrder(t, db), ",")
	if got != "x,z,y,w" {
		t.Fatalf("expected order x,z,y,w; got %s", got)
	}

	out = mustRun(t, db, "tier", "move", "S", "up")
	if !strings.Contains(string(out), "already at the up boundary") {
		t.Fatalf("expected boundary message, got %q", out)
	}
}

func TestTierUpdate_KeepsUnsetFields(t *testing.T) {
	db := seedDB(t)

	mustRun(t, db, "tier", "update", "S", "--name", "Top")

	var tiers []models.Tier
	if err := json.Unmarshal(mustRun(t, db, "--json", "tier", "ls"), &tiers); err != nil {
		t.Fatalf("decode tiers: %v", err)
	}
	if tiers[0].Name != "Top" || tiers[0].Color != "#ff7f7f" || tiers[0].Rank != 0 {
		t.Fatalf("unexpected first tier: %+v", tiers[0])
	}

	var item models.Item
	if err := json.Unmarshal(mustRun(t, db, "--json", "item", "assign", "w", "--tier", "Top"), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if *item.Tier != "Top" || *item.Position != 1 {
		t.Fatalf("expected w at Top/1, got %+v", item)
	}
}

func TestTierRm_RejectsTierInUse(t *testing.T) {
	db := seedDB(t)

	_, _, err := runCLI(t, []string{"--db", db, "tier", "rm", "A"})
	if err == nil {
		t.Fatalf("expected error deleting a tier in use")
	}
	if !strings.Contains(err.Error(), "still referenced") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTierRm_DetachFromConfig(t *testing.T) {
	db := seedDB(t)
	cfgPath := filepath.Join(t.TempDir(), "rankd.yaml")
	if err := os.WriteFile(cfgPath, []byte("tiers:\n  delete_policy: detach\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	mustRun(t, db, "--config", cfgPath, "tier", "rm", "A")

	got := strings.Join(itemOrder(t, db), ",")
	if got != "x,z,w,y" {
		t.Fatalf("expected order x,z,w,y; got %s", got)
	}
}

func TestReorder_FromYAMLFile(t *testing.T) {
	db := seedDB(t)
	file := filepath.Join(t.TempDir(), "order.yaml")
	body := `assignments:
  - {item: y, tier: S, position: 0}
  - {item: x, tier: S, position: 1}
  - {item: z, tier: A, position: 2}
  - {item: w, tier: null, position: 3}
`
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatalf("write reorder file: %v", err)
	}

	mustRun(t, db, "reorder", "-f", file)

	got := strings.Join(itemOrder(t, db), ",")
	if got != "y,x,z,w" {
		t.Fatalf("expected order y,x,z,w; got %s", got)
	}

	out := mustRun(t, db, "board")
	if !strings.Contains(string(out), "y, x") {
		t.Fatalf("expected S lane to list y, x; got:\n%s", out)
	}
}

func TestReorder_InvalidLeavesStoreUntouched(t *testing.T) {
	db := seedDB(t)
	file := filepath.Join(t.TempDir(), "order.yaml")
	body := `assignments:
  - {item: y, tier: S, position: 0}
  - {item: ghost, tier: S, position: 1}
`
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatalf("write reorder file: %v", err)
	}

	if _, _, err := runCLI(t, []string{"--db", db, "reorder", "-f", file}); err == nil {
		t.Fatalf("expected reorder with unknown item to fail")
	}

	got := strings.Join(itemOrder(t, db), ",")
	if got != "x,y,z,w" {
		t.Fatalf("expected untouched order x,y,z,w; got %s", got)
	}
}

func TestReorder_MissingPositionRejected(t *testing.T) {
	db := seedDB(t)
	file := filepath.Join(t.TempDir(), "order.yaml")
	body := `assignments:
  - {item: x, tier: S}
  - {item: y, tier: A, position: 1}
  - {item: z, tier: B, position: 2}
  - {item: w, tier: null, position: 3}
`
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatalf("write reorder file: %v", err)
	}

	_, _, err := runCLI(t, []string{"--db", db, "reorder", "-f", file})
	if err == nil {
		t.Fatalf("expected reorder without a position to fail")
	}
	if !strings.Contains(err.Error(), "assignments[0].position") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheck_ReportsHealthyStore(t *testing.T) {
	db := seedDB(t)

	var report ranking.Report
	if err := json.Unmarshal(mustRun(t, db, "--json", "check"), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.OK() || !report.Dense {
		t.Fatalf("expected healthy dense store, got %+v", report)
	}

	out := mustRun(t, db, "recompute")
	if !strings.Contains(string(out), "renumbered 4 items") {
		t.Fatalf("unexpected recompute output: %q", out)
	}
}
