package testutil

import (
	"testing"
	"time"

	"github.com/randalmurphal/reldocs/workflow"
)

var (
	_ workflow.Tracker   = (*FakeTracker)(nil)
	_ workflow.CodeHost  = (*FakeCodeHost)(nil)
	_ workflow.Wiki      = (*FakeWiki)(nil)
	_ workflow.Generator = (*FakeGenerator)(nil)
)

func TestTestContext_CanceledOnCleanup(t *testing.T) {
	var done <-chan struct{}
	t.Run("inner", func(t *testing.T) {
		ctx := TestContext(t)
		done = ctx.Done()
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("context not canceled after test cleanup")
	}
}

func TestSampleIssues_CoverCategories(t *testing.T) {
	issues := SampleIssues()
	var breaking, features, bugs int
	for _, issue := range issues {
		switch {
		case issue.BreakingChange:
			breaking++
		case issue.Type == "Story":
			features++
		case issue.Type == "Bug":
			bugs++
		}
	}
	if breaking == 0 || features == 0 || bugs == 0 {
		t.Errorf("fixtures must cover all categories: breaking=%d features=%d bugs=%d",
			breaking, features, bugs)
	}
}

func TestFakeTracker_CountsCalls(t *testing.T) {
	f := &FakeTracker{FixVersionIssues: SampleIssues()}
	issues, err := f.SearchFixVersion(TestContext(t), "2.3.0")
	if err != nil {
		t.Fatalf("SearchFixVersion: %v", err)
	}
	if len(issues) != 3 || f.FixVersionCalls != 1 {
		t.Errorf("issues=%d calls=%d", len(issues), f.FixVersionCalls)
	}
}
