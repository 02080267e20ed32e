package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	validation := fmt.Errorf("create task: %w", ValidationError{Entity: EntityTask, Field: "status", Reason: "is required"})
	notFound := fmt.Errorf("update: %w", NotFoundError{Entity: EntityProject, ID: "p9"})
	integrity := fmt.Errorf("create: %w", IntegrityError{Entity: EntityProject, Ref: EntityWorkspace, RefID: "w9"})

	if !errors.Is(validation, ErrValidation) || errors.Is(validation, ErrNotFound) {
		t.Fatalf("validation error matched wrong sentinels")
	}
	if !errors.Is(notFound, ErrNotFound) || errors.Is(notFound, ErrValidation) {
		t.Fatalf("not found error matched wrong sentinels")
	}
	if !errors.Is(integrity, ErrIntegrity) || !errors.Is(integrity, ErrValidation) {
		t.Fatalf("integrity error should match both integrity and validation")
	}

	var nf NotFoundError
	if !errors.As(notFound, &nf) || nf.Entity != EntityProject || nf.ID != "p9" {
		t.Fatalf("expected NotFoundError identifying project p9, got %+v", nf)
	}
	var ie IntegrityError
	if !errors.As(integrity, &ie) || ie.Ref != EntityWorkspace || ie.RefID != "w9" {
		t.Fatalf("expected IntegrityError referencing w9, got %+v", ie)
	}
}

func TestErrorMessagesIdentifyEntity(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NotFoundError{Entity: EntitySprint, ID: "s4"}, `sprint "s4" not found`},
		{ValidationError{Entity: EntityTask, Field: "projectId", Reason: "is required"}, "task: field projectId is required"},
		{ValidationError{Entity: EntityTask, ID: "t1", Reason: "bad"}, `task "t1": bad`},
		{IntegrityError{Entity: EntityEpic, Ref: EntityProject, RefID: "p2"}, `epic references project "p2": not found`},
	}
	for _, tc := range cases {
		if !strings.Contains(tc.err.Error(), tc.want) {
			t.Fatalf("expected %q in %q", tc.want, tc.err.Error())
		}
	}
}
