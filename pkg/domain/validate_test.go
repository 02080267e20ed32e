package domain

import (
	"errors"
	"testing"
)

func TestValidateReportsFirstFailingField(t *testing.T) {
	cases := []struct {
		name   string
		entity EntityType
		value  any
		field  string
	}{
		{"task without project", EntityTask, Task{Status: "todo"}, "projectId"},
		{"task without status", EntityTask, Task{ProjectID: "p1"}, "status"},
		{"project without name", EntityProject, Project{}, "name"},
		{"project progress over 100", EntityProject, Project{Name: "x", Progress: 101}, "progress"},
		{"sprint without dates", EntitySprint, Sprint{ProjectID: "p1", Status: SprintPlanned}, "startDate"},
		{"sprint bad date", EntitySprint, Sprint{ProjectID: "p1", StartDate: "2025-02-30", EndDate: "2025-03-01", Status: SprintPlanned}, "startDate"},
		{"sprint ends before start", EntitySprint, Sprint{ProjectID: "p1", StartDate: "2025-02-10", EndDate: "2025-02-01", Status: SprintPlanned}, "endDate"},
		{"epic item span", EntityEpicItem, EpicItem{EpicID: "e1", Title: "x", Status: EpicItemTodo}, "sprintSpan"},
		{"epic item status", EntityEpicItem, EpicItem{EpicID: "e1", Title: "x", SprintSpan: 1, Status: "blocked"}, "status"},
		{"comment body", EntityTask, Task{ProjectID: "p1", Status: "todo", Comments: []Comment{{ID: "c1"}}}, "comments[0].body"},
		{"user email", EntityUser, User{Name: "a", Email: "nope"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.entity, "", tc.value)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, ve.Field, err)
			}
			if ve.Entity != tc.entity {
				t.Fatalf("expected entity %s, got %s", tc.entity, ve.Entity)
			}
		})
	}
}

func TestValidateAcceptsCompleteRecords(t *testing.T) {
	values := []struct {
		entity EntityType
		value  any
	}{
		{EntityTask, Task{ProjectID: "p1", Status: "todo", DueDate: "2025-05-01"}},
		{EntitySprint, Sprint{ProjectID: "p1", StartDate: "2025-01-01", EndDate: "2025-01-01", Status: SprintActive}},
		{EntityEpic, Epic{ProjectID: "p1", Name: "Billing"}},
		{EntityEpicItem, EpicItem{EpicID: "e1", Title: "API", SprintSpan: 2, Status: EpicItemReview}},
		{EntityTeam, Team{Name: "Core"}},
	}
	for _, v := range values {
		if err := Validate(v.entity, "", v.value); err != nil {
			t.Fatalf("%s: unexpected error %v", v.entity, err)
		}
	}
}
