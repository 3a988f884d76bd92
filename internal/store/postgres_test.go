package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFailuresEncoding(t *testing.T) {
	t.Parallel()

	s, err := marshalFailures(nil)
	if err != nil || s != "[]" {
		t.Fatalf("marshalFailures(nil) = %q, %v", s, err)
	}
	got, err := unmarshalFailures([]byte(`["users","places"]`))
	if err != nil || len(got) != 2 || got[1] != "places" {
		t.Fatalf("unmarshalFailures = %v, %v", got, err)
	}
	empty, err := unmarshalFailures(nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("unmarshalFailures(nil) = %v, %v", empty, err)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	rec := RunRecord{
		RunID:      uuid.NewString(),
		Variant:    "post",
		FinalState: "rendered",
		Rendered:   3,
		Failures:   []string{"status"},
		FinishedAt: time.Now().UTC().Add(time.Hour),
	}
	if err := st.RecordRun(ctx, rec); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	runs, err := st.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != rec.RunID || runs[0].Rendered != 3 || len(runs[0].Failures) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
}
