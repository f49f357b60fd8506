package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/certscan/internal/issn"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	records := sampleRecords()

	run, err := db.SaveRun(records)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == "" || run.Records != len(records) {
		t.Errorf("SaveRun() = %+v", run)
	}

	got, err := db.Records(run.ID)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestRun(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestRun()
	if err != nil || latest != nil {
		t.Fatalf("LatestRun() on empty db = %+v, %v; want nil, nil", latest, err)
	}

	if _, err := db.SaveRun(sampleRecords()); err != nil {
		t.Fatal(err)
	}
	second, err := db.SaveRun(sampleRecords()[:1])
	if err != nil {
		t.Fatal(err)
	}

	latest, err = db.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest == nil || latest.ID != second.ID || latest.Records != 1 {
		t.Errorf("LatestRun() = %+v, want run %s with 1 record", latest, second.ID)
	}
}

func TestReport(t *testing.T) {
	db := openTestDB(t)
	run, err := db.SaveRun(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}

	rep, err := db.Report(run)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	want := &Report{
		Run:     &run,
		Records: 4,
		Errors:  1,
		Checksum: map[string]int{
			string(issn.ChecksumValid):   1,
			string(issn.ChecksumInvalid): 1,
			string(issn.ChecksumAbsent):  1,
		},
		Frequencies: map[string]int{"semestral": 1, "anual": 2},
		Invalid:     []string{"0719-6568"},
	}
	if diff := cmp.Diff(want, rep); diff != "" {
		t.Errorf("Report() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	run, err := db.SaveRun(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer db.Close()

	got, err := db.Records(run.ID)
	if err != nil || len(got) != len(sampleRecords()) {
		t.Errorf("Records() after reopen = %d records, %v", len(got), err)
	}
}

func TestRecordsReport_MatchesDB(t *testing.T) {
	db := openTestDB(t)
	run, err := db.SaveRun(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	fromDB, err := db.Report(run)
	if err != nil {
		t.Fatal(err)
	}

	got := RecordsReport(sampleRecords())
	fromDB.Run = nil
	if diff := cmp.Diff(fromDB, got); diff != "" {
		t.Errorf("RecordsReport() differs from DB.Report (-db +memory):\n%s", diff)
	}
}
