package archive

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testResponse(token string) *FinalizedResponse {
	return &FinalizedResponse{
		ID:            "resp-" + token,
		SessionToken:  token,
		SurveyVersion: "v1",
		Respondent:    "resp-1",
		Answers: map[string]any{
			"age":  float64(30),
			"name": "A",
		},
		VisibleFields:     []string{"age", "name"},
		SubmittedAt:       time.Now().UTC().Truncate(time.Millisecond),
		CompletionSeconds: 42,
	}
}

func TestMemorySink_ArchiveAndDuplicate(t *testing.T) {
	sink := NewMemorySink()
	defer sink.Close()
	ctx := context.Background()

	resp := testResponse("tok-1")
	if err := sink.Archive(ctx, resp); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if got := sink.Response("tok-1"); got == nil || got.ID != resp.ID {
		t.Errorf("Response(tok-1) = %+v, want the archived response", got)
	}

	// At most one response per session token.
	dup := testResponse("tok-1")
	dup.ID = "resp-other"
	err := sink.Archive(ctx, dup)
	if err == nil {
		t.Fatal("Expected duplicate archive to fail")
	}
	if !strings.Contains(err.Error(), "already archived") {
		t.Errorf("Unexpected duplicate error: %v", err)
	}

	// The first response is untouched.
	if got := sink.Response("tok-1"); got.ID != resp.ID {
		t.Errorf("Duplicate attempt replaced the response: %+v", got)
	}
}

func TestMemorySink_Audit(t *testing.T) {
	sink := NewMemorySink()
	defer sink.Close()
	ctx := context.Background()

	facts := []*AuditFact{
		{Actor: "anonymous", Action: AuditActionSessionStarted, Object: "tok-1", At: time.Now()},
		{Actor: "resp-1", Action: AuditActionSubmitted, Object: "resp-tok-1", At: time.Now()},
	}
	for _, fact := range facts {
		if err := sink.Audit(ctx, fact); err != nil {
			t.Fatalf("Audit failed: %v", err)
		}
	}

	got := sink.Facts()
	if len(got) != 2 {
		t.Fatalf("Expected 2 facts, got %d", len(got))
	}
	if got[0].Action != AuditActionSessionStarted || got[1].Action != AuditActionSubmitted {
		t.Errorf("Facts out of order: %v", got)
	}
}

func TestSQLiteSink_ArchiveRoundTrip(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteSink failed: %v", err)
	}
	defer sink.Close()
	ctx := context.Background()

	resp := testResponse("tok-1")
	if err := sink.Archive(ctx, resp); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	got, err := sink.Response(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Response failed: %v", err)
	}
	if got == nil {
		t.Fatal("Response returned nil for an archived token")
	}

	if got.ID != resp.ID || got.SurveyVersion != resp.SurveyVersion || got.Respondent != resp.Respondent {
		t.Errorf("Round trip changed identity: %+v", got)
	}
	if got.Answers["age"] != float64(30) || got.Answers["name"] != "A" {
		t.Errorf("Round trip changed answers: %v", got.Answers)
	}
	if len(got.VisibleFields) != 2 || got.VisibleFields[0] != "age" {
		t.Errorf("Round trip changed visible fields: %v", got.VisibleFields)
	}
	if got.CompletionSeconds != 42 {
		t.Errorf("CompletionSeconds = %d, want 42", got.CompletionSeconds)
	}
	if !got.SubmittedAt.Equal(resp.SubmittedAt) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, resp.SubmittedAt)
	}
}

func TestSQLiteSink_DuplicateTokenRejected(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	ctx := context.Background()

	if err := sink.Archive(ctx, testResponse("tok-1")); err != nil {
		t.Fatal(err)
	}

	dup := testResponse("tok-1")
	dup.ID = "resp-other"
	err = sink.Archive(ctx, dup)
	if err == nil {
		t.Fatal("Expected duplicate archive to fail")
	}
	if !strings.Contains(err.Error(), "already archived") {
		t.Errorf("Unexpected duplicate error: %v", err)
	}
}

func TestSQLiteSink_UnknownTokenIsNil(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	got, err := sink.Response(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Response failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for an unknown token, got %+v", got)
	}
}

func TestSQLiteSink_Audit(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	ctx := context.Background()

	fact := &AuditFact{
		Actor:  "resp-1",
		Action: AuditActionHeartbeat,
		Object: "tok-1",
		At:     time.Now().UTC(),
	}
	if err := sink.Audit(ctx, fact); err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	var count int
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM audit_facts").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 audit fact, got %d", count)
	}
}
