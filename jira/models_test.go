package jira

import "testing"

func TestExtractChangelog(t *testing.T) {
	description := `# Summary
Adds bulk export.

# Changelog
Exports can now be scheduled.
Old export endpoint is deprecated.

# Testing
Covered by integration tests.`

	got := extractChangelog(description)
	want := "Exports can now be scheduled.\nOld export endpoint is deprecated."
	if got != want {
		t.Errorf("extractChangelog() = %q, want %q", got, want)
	}
}

func TestExtractChangelog_NoSection(t *testing.T) {
	if got := extractChangelog("Just a plain description."); got != "" {
		t.Errorf("extractChangelog() = %q, want empty", got)
	}
}

func TestToIssue_EpicFromParent(t *testing.T) {
	issue := toIssue(wireIssue{
		Key: "REL-5",
		Fields: wireFields{
			Summary: "Child task",
			Parent:  &wireIssue{Key: "REL-EPIC"},
		},
	})
	if issue.EpicKey != "REL-EPIC" {
		t.Errorf("EpicKey = %q, want %q", issue.EpicKey, "REL-EPIC")
	}
}

func TestToIssue_BreakingLabelVariants(t *testing.T) {
	for _, label := range []string{"Breaking", "breaking-change", "BREAKING_CHANGE"} {
		issue := toIssue(wireIssue{Key: "REL-9", Fields: wireFields{Labels: []string{label}}})
		if !issue.BreakingChange {
			t.Errorf("label %q should mark a breaking change", label)
		}
	}
}
