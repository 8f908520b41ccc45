package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/and161185/pocketfile/internal/errs"
)

func TestProjects_Create(t *testing.T) {
	t.Parallel()
	repo := &fakeProjects{}
	s := NewProjectService(repo)
	ctx := context.Background()

	if _, err := s.Create(ctx, "   ", "x"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("blank name: %v", err)
	}
	if _, err := s.Create(ctx, strings.Repeat("n", 256), ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("long name: %v", err)
	}

	p, err := s.Create(ctx, " Alpha ", "  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Alpha" || p.Description != nil {
		t.Fatalf("bad project: %+v", p)
	}

	p, err = s.Create(ctx, "Beta", "release builds")
	if err != nil || p.Description == nil || *p.Description != "release builds" {
		t.Fatalf("Create with description: %+v, %v", p, err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %+v, %v", list, err)
	}

	repo.createErr = errors.New("boom")
	if _, err := s.Create(ctx, "Gamma", ""); err == nil {
		t.Fatalf("want propagated repo error")
	}
}
