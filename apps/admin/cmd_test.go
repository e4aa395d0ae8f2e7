package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"

	"github.com/moh-Adedamola/molek-records/core/promotion"
	"github.com/moh-Adedamola/molek-records/core/result"
	testutil "github.com/moh-Adedamola/molek-records/tests"
)

func init() {
	color.NoColor = true
}

func newTestCLI(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	t.Helper()
	env := testutil.NewEnv(t)
	out := new(bytes.Buffer)
	cli := &commandLine{
		resultSvc: env.ResultSvc,
		promoSvc:  env.PromoSvc,
		out:       out,
	}
	return cli, env, out
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestCLIHelp(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: []string{"admin"}},
		{name: "unknown command", args: []string{"admin", "bogus"}},
		{name: "migrate without command", args: []string{"admin", "migrate"}},
		{name: "importca without flags", args: []string{"admin", "importca"}},
		{name: "importexam without flags", args: []string{"admin", "importexam"}},
		{name: "recalcpositions without flags", args: []string{"admin", "recalcpositions"}},
		{name: "evaluatepromotion without flags", args: []string{"admin", "evaluatepromotion"}},
		{name: "applypromotion without flags", args: []string{"admin", "applypromotion"}},
		{name: "deleteresult without flags", args: []string{"admin", "deleteresult"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _, _ := newTestCLI(t)
			if err := cli.run(tt.args); err != errHelp {
				t.Errorf("run(%v) error = %v, want errHelp", tt.args, err)
			}
		})
	}
}

func TestCLIMigrate(t *testing.T) {
	origGooseRunFunc, origMigrateUpFunc := gooseRunFunc, migrateUpFunc
	defer func() { gooseRunFunc, migrateUpFunc = origGooseRunFunc, origMigrateUpFunc }()

	var gotCommand, gotDir string
	var gotArgs []string
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		gotCommand = command
		gotDir = dir
		gotArgs = args
		return nil
	}
	var migratedUp bool
	migrateUpFunc = func(db *sql.DB) error {
		migratedUp = true
		return nil
	}

	// lazy handle; no connection is made
	db, err := sqlx.Open("postgres", "host=localhost dbname=test sslmode=disable")
	if err != nil {
		t.Fatalf("sqlx.Open() failed: %v", err)
	}
	cli, _, _ := newTestCLI(t)
	cli.db = db

	// plain "up" takes the bootstrap path
	if err := cli.run([]string{"admin", "migrate", "up"}); err != nil {
		t.Fatalf("run(migrate up) failed: %v", err)
	}
	if !migratedUp {
		t.Error("migrate up did not use the shared migrator")
	}
	if gotCommand != "" {
		t.Errorf("migrate up fell through to goose with %q", gotCommand)
	}

	// any other command passes through to goose
	if err := cli.run([]string{"admin", "migrate", "up-to", "00002"}); err != nil {
		t.Fatalf("run(migrate up-to) failed: %v", err)
	}
	if gotCommand != "up-to" || gotDir != "migrations" {
		t.Errorf("migrate ran %q in %q, want up-to in migrations", gotCommand, gotDir)
	}
	testutil.AssertEqualJSON(t, []string{"00002"}, gotArgs)
}

func TestCLIImportCA(t *testing.T) {
	cli, env, out := newTestCLI(t)
	env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	env.AddSubject(t, "Mathematics")

	path := writeTempFile(t, "ca.csv",
		"admission_number,subject,ca_score,theory_score\nMOL/001,Mathematics,25,30\nMOL/999,Mathematics,10,10\n")

	err := cli.run([]string{
		"admin", "importca",
		"-file", path, "-session", env.Session.ID, "-term", env.Term.ID,
	})
	if err != nil {
		t.Fatalf("run(importca) failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "1 created, 0 updated, 1 rejected") {
		t.Errorf("run(importca) output = %q, want batch summary", got)
	}
	if got := out.String(); !strings.Contains(got, "MOL/999") {
		t.Errorf("run(importca) output = %q, want rejected row listed", got)
	}
}

func TestCLIImportCA_missingFile(t *testing.T) {
	cli, env, _ := newTestCLI(t)
	err := cli.run([]string{
		"admin", "importca",
		"-file", filepath.Join(t.TempDir(), "nope.csv"),
		"-session", env.Session.ID, "-term", env.Term.ID,
	})
	if err == nil {
		t.Fatal("run(importca) error = nil, want open error")
	}
}

func TestCLIRecalcPositions(t *testing.T) {
	cli, env, out := newTestCLI(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	env.SeedResult(t, std.ID, sub.ID, 25, 30, 20)

	err := cli.run([]string{
		"admin", "recalcpositions",
		"-session", env.Session.ID, "-term", env.Term.ID,
	})
	if err != nil {
		t.Fatalf("run(recalcpositions) failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "1 subject cohort(s) ranked") {
		t.Errorf("run(recalcpositions) output = %q, want ranking summary", got)
	}
}

func TestCLIEvaluatePromotion(t *testing.T) {
	cli, env, out := newTestCLI(t)
	env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")

	rules := promotion.RuleSet{
		PassMark:           50,
		CompulsorySubjects: []string{"Mathematics"},
		MinimumAdditional:  1,
		TotalMinimum:       2,
		Mode:               promotion.ModeRecommend,
	}
	data, err := json.Marshal(rules)
	if err != nil {
		t.Fatalf("marshaling rules: %v", err)
	}
	path := writeTempFile(t, "rules.json", string(data))

	err = cli.run([]string{
		"admin", "evaluatepromotion",
		"-class", "JSS1", "-session", env.Session.ID, "-rules", path,
	})
	if err != nil {
		t.Fatalf("run(evaluatepromotion) failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Advisory run") {
		t.Errorf("run(evaluatepromotion) output = %q, want advisory note for mode=recommend", got)
	}
	if !strings.Contains(got, "MOL/001") || !strings.Contains(got, string(promotion.StatusNoData)) {
		t.Errorf("run(evaluatepromotion) output = %q, want decision row", got)
	}
}

func TestCLIApplyPromotion(t *testing.T) {
	cli, env, out := newTestCLI(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")

	err := cli.run([]string{
		"admin", "applypromotion",
		"-from", "JSS1", "-to", "JSS2",
		"-session", env.Session.ID, "-students", std.ID + ",no-such-student",
	})
	if err != nil {
		t.Fatalf("run(applypromotion) failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "1 promoted, 0 graduated") {
		t.Errorf("run(applypromotion) output = %q, want promotion summary", got)
	}
	if !strings.Contains(got, "no-such-student") {
		t.Errorf("run(applypromotion) output = %q, want failed ID listed", got)
	}

	moved, err := env.School.GetStudentByID(context.Background(), std.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() failed: %v", err)
	}
	if moved.ClassLevel != "JSS2" {
		t.Errorf("student class = %q, want JSS2", moved.ClassLevel)
	}
}

func TestCLIDeleteResult(t *testing.T) {
	cli, env, _ := newTestCLI(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	env.SeedResult(t, std.ID, sub.ID, 25, 30, 20)

	err := cli.run([]string{
		"admin", "deleteresult",
		"-student", std.ID, "-subject", sub.ID,
		"-session", env.Session.ID, "-term", env.Term.ID,
	})
	if err != nil {
		t.Fatalf("run(deleteresult) failed: %v", err)
	}

	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}
	if _, err := env.ResultSvc.Get(context.Background(), key); err != result.ErrNotFound {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
