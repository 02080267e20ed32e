package domain

import "testing"

func TestTaskPatchOverwritesOnlyProvidedKeys(t *testing.T) {
	task := Task{ID: "t1", ProjectID: "p1", Title: "Write docs", Status: "todo", Priority: "low", Tags: []string{"tag1"}}
	TaskPatch{Status: Ptr("done"), Tags: []string{}}.Apply(&task)

	if task.Status != "done" {
		t.Fatalf("expected status done, got %s", task.Status)
	}
	if task.Title != "Write docs" || task.Priority != "low" || task.ProjectID != "p1" {
		t.Fatalf("expected untouched fields retained, got %+v", task)
	}
	if task.Tags == nil || len(task.Tags) != 0 {
		t.Fatalf("expected empty non-nil tag list, got %#v", task.Tags)
	}
}

func TestPatchSlicesAreCopied(t *testing.T) {
	members := []string{"u1", "u2"}
	var team Team
	TeamPatch{Members: members}.Apply(&team)
	members[0] = "u9"
	if team.Members[0] != "u1" {
		t.Fatalf("expected members copied, got %v", team.Members)
	}
}

func TestSprintPatchMilestone(t *testing.T) {
	var sprint Sprint
	SprintPatch{Milestone: Ptr("Beta")}.Apply(&sprint)
	if sprint.Milestone == nil || *sprint.Milestone != "Beta" {
		t.Fatalf("expected milestone Beta, got %v", sprint.Milestone)
	}
	SprintPatch{}.Apply(&sprint)
	if sprint.Milestone == nil {
		t.Fatalf("expected nil patch to retain milestone")
	}
	SprintPatch{Milestone: Ptr("")}.Apply(&sprint)
	if sprint.Milestone != nil {
		t.Fatalf("expected empty milestone to clear, got %v", *sprint.Milestone)
	}
}
