package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matsen/certscan/internal/issn"
)

type fakeExtractor struct {
	mu      sync.Mutex
	seen    []string
	active  atomic.Int32
	maxSeen atomic.Int32
	cancel  context.CancelFunc
}

func (f *fakeExtractor) ExtractFile(_ context.Context, path string) issn.Record {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.seen = append(f.seen, path)
	f.mu.Unlock()

	name := filepath.Base(path)
	switch {
	case strings.Contains(name, "panic"):
		panic("corrupt xref table")
	case strings.Contains(name, "bad"):
		return issn.ErrorRecord(name, fmt.Errorf("extracting lines: unreadable"))
	case strings.Contains(name, "stop") && f.cancel != nil:
		f.cancel()
	}
	valid := true
	return issn.Record{File: name, ISSN: "2145-0366", ISSNValid: &valid, Checksum: issn.ChecksumValid}
}

func TestRun_ErrorsDoNotAbortBatch(t *testing.T) {
	paths := []string{"/c/a.pdf", "/c/bad.pdf", "/c/panic.pdf", "/c/d.pdf"}
	records := Run(context.Background(), &fakeExtractor{}, paths, Options{})

	if len(records) != len(paths) {
		t.Fatalf("Run() returned %d records, want %d", len(records), len(paths))
	}
	gotFiles := make([]string, len(records))
	for i, r := range records {
		gotFiles[i] = r.File
	}
	if diff := cmp.Diff([]string{"a.pdf", "bad.pdf", "panic.pdf", "d.pdf"}, gotFiles); diff != "" {
		t.Errorf("record order mismatch (-want +got):\n%s", diff)
	}

	if records[0].Failed() || records[3].Failed() {
		t.Errorf("good documents failed: %+v, %+v", records[0], records[3])
	}
	if !records[1].Failed() {
		t.Errorf("bad.pdf should fail: %+v", records[1])
	}
	if !records[2].Failed() || !strings.Contains(records[2].Error, "corrupt xref table") {
		t.Errorf("panic.pdf should fail with panic message: %+v", records[2])
	}
}

func TestRun_WorkersPreserveOrder(t *testing.T) {
	var paths []string
	for i := 0; i < 40; i++ {
		paths = append(paths, fmt.Sprintf("/c/doc%02d.pdf", i))
	}
	ex := &fakeExtractor{}
	records := Run(context.Background(), ex, paths, Options{Workers: 4})

	for i, r := range records {
		if want := filepath.Base(paths[i]); r.File != want {
			t.Errorf("records[%d].File = %q, want %q", i, r.File, want)
		}
	}
	if got := ex.maxSeen.Load(); got > 4 {
		t.Errorf("max concurrent extractions = %d, want <= 4", got)
	}
	if len(ex.seen) != len(paths) {
		t.Errorf("extracted %d documents, want %d", len(ex.seen), len(paths))
	}
}

func TestRun_CanceledContextReportsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ex := &fakeExtractor{cancel: cancel}
	paths := []string{"/c/a.pdf", "/c/stop.pdf", "/c/c.pdf", "/c/d.pdf"}
	records := Run(ctx, ex, paths, Options{Workers: 1})

	if len(records) != 4 {
		t.Fatalf("Run() returned %d records, want 4", len(records))
	}
	if records[0].Failed() || records[1].Failed() {
		t.Errorf("started documents should complete: %+v %+v", records[0], records[1])
	}
	for _, r := range records[2:] {
		if !r.Failed() || !strings.Contains(r.Error, context.Canceled.Error()) {
			t.Errorf("record %s = %+v, want canceled error", r.File, r)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	if got := Run(context.Background(), &fakeExtractor{}, nil, Options{}); len(got) != 0 {
		t.Errorf("Run(nil) = %v, want empty", got)
	}
}

func TestFindPDFs(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"b.pdf",
		"a.PDF",
		"notes.txt",
		"sub/c.pdf",
		"sub/deeper/d.Pdf",
		"sub/e.pdf.bak",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindPDFs(root)
	if err != nil {
		t.Fatalf("FindPDFs() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.pdf"),
		filepath.Join(root, "sub", "deeper", "d.Pdf"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindPDFs() mismatch (-want +got):\n%s", diff)
	}

	if _, err := FindPDFs(filepath.Join(root, "missing")); err == nil {
		t.Error("FindPDFs(missing) expected error")
	}
}

func TestSummarize(t *testing.T) {
	yes, no := true, false
	records := []issn.Record{
		{File: "a", ISSN: "2145-0366", ISSNValid: &yes, Checksum: issn.ChecksumValid,
			Title: "T", AbbreviatedTitle: "T.", Publisher: "P", Frequency: "anual", Medium: "impreso", AssignmentDate: "1/1/2020"},
		{File: "b", ISSN: "0719-6568", ISSNValid: &no, Checksum: issn.ChecksumInvalid, Title: "T"},
		{File: "c", ISSNValid: &no, Checksum: issn.ChecksumAbsent},
		{File: "d", Error: "boom"},
	}
	want := Summary{Total: 4, Errors: 1, Valid: 1, Invalid: 1, NoISSN: 1, Complete: 1}
	if diff := cmp.Diff(want, Summarize(records)); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}
