package provider

import (
	"context"
	"strings"
	"testing"

	"canvass-hq/canvass/pkg/schema"
)

func validSurvey(version string) *schema.Survey {
	return &schema.Survey{
		ID:      "feedback",
		Version: version,
		Title:   "Feedback",
		Sections: []*schema.Section{
			{
				ID: "main",
				Fields: []*schema.Field{
					{ID: "rating", Type: schema.FieldTypeNumber, Label: "Rating", Required: true},
					{
						ID:    "comment",
						Type:  schema.FieldTypeLongText,
						Label: "Comment",
						VisibleWhen: &schema.RuleSpec{
							Conditions: []schema.ConditionSpec{
								{Field: "rating", Operator: "less_than", Value: 3},
							},
						},
					},
				},
			},
		},
	}
}

func TestRegistry_PublishAndLookup(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if err := r.Publish(validSurvey("v1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := r.Survey(ctx, "v1")
	if err != nil {
		t.Fatalf("Survey failed: %v", err)
	}
	if got.Version != "v1" {
		t.Errorf("Survey version = %q, want v1", got.Version)
	}

	if _, err := r.Survey(ctx, "v2"); err == nil {
		t.Error("Expected lookup of an unpublished version to fail")
	}

	if !r.Has("v1") || r.Has("v2") {
		t.Error("Has() disagrees with publications")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_PublishIsImmutable(t *testing.T) {
	r := NewRegistry()

	if err := r.Publish(validSurvey("v1")); err != nil {
		t.Fatal(err)
	}

	err := r.Publish(validSurvey("v1"))
	if err == nil {
		t.Fatal("Expected republishing a version to fail")
	}
	if !strings.Contains(err.Error(), "already published") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRegistry_PublishRejectsBadRules(t *testing.T) {
	r := NewRegistry()

	survey := validSurvey("v1")
	survey.Sections[0].Fields[1].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "no_such_field", Operator: "equals", Value: 1},
		},
	}

	if err := r.Publish(survey); err == nil {
		t.Fatal("Expected a survey with compile errors to stay unpublished")
	}
	if r.Has("v1") {
		t.Error("Failed publication must not register the version")
	}
}

func TestRegistry_Versions(t *testing.T) {
	r := NewRegistry()
	for _, v := range []string{"v3", "v1", "v2"} {
		if err := r.Publish(validSurvey(v)); err != nil {
			t.Fatal(err)
		}
	}

	got := r.Versions()
	want := []string{"v1", "v2", "v3"}
	if len(got) != len(want) {
		t.Fatalf("Versions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Versions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_OnPublishHook(t *testing.T) {
	r := NewRegistry()

	var published []string
	r.OnPublish(func(version string) {
		published = append(published, version)
	})

	if err := r.Publish(validSurvey("v1")); err != nil {
		t.Fatal(err)
	}

	// A failed publication must not fire the hook.
	bad := validSurvey("v2")
	bad.Sections[0].Fields[1].VisibleWhen = &schema.RuleSpec{
		Conditions: []schema.ConditionSpec{
			{Field: "ghost", Operator: "equals", Value: 1},
		},
	}
	_ = r.Publish(bad)

	if len(published) != 1 || published[0] != "v1" {
		t.Errorf("Hook fired for %v, want [v1]", published)
	}
}

func TestRegistry_NilAndEmpty(t *testing.T) {
	r := NewRegistry()

	if err := r.Publish(nil); err == nil {
		t.Error("Expected Publish(nil) to fail")
	}

	survey := validSurvey("")
	if err := r.Publish(survey); err == nil {
		t.Error("Expected Publish with empty version to fail")
	}
}
