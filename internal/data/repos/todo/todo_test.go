package todo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/todo-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/todo-backend/internal/domain/todo"
	"github.com/yungbote/todo-backend/internal/platform/dbctx"
)

func TestTodoRepoGetPage(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewTodoRepo(db, testutil.Logger(t))

	owner := testutil.SeedEmail(t, ctx, db, "owner@example.com", "Owner")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		testutil.SeedTodo(t, ctx, db, owner.ID, fmt.Sprintf("todo %02d", i), "plain", base.Add(time.Duration(i)*time.Hour))
	}

	col, err := ParseSortField("createdAt")
	if err != nil {
		t.Fatalf("ParseSortField: %v", err)
	}
	rows, total, err := repo.GetPage(dbc, PageQuery{PageNumber: 2, PageSize: 10, SortColumn: col})
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if total != 25 {
		t.Fatalf("total: want=25 got=%d", total)
	}
	if len(rows) != 10 {
		t.Fatalf("page len: want=10 got=%d", len(rows))
	}
	for i, row := range rows {
		want := fmt.Sprintf("todo %02d", i+10)
		if row.Title != want {
			t.Fatalf("row %d: want=%q got=%q", i, want, row.Title)
		}
		if row.Owned == nil || row.Owned.ID != owner.ID {
			t.Fatalf("row %d: owner not preloaded: %+v", i, row.Owned)
		}
	}

	rows, total, err = repo.GetPage(dbc, PageQuery{PageNumber: 3, PageSize: 10, SortColumn: col, Descending: true})
	if err != nil {
		t.Fatalf("GetPage desc: %v", err)
	}
	if total != 25 || len(rows) != 5 {
		t.Fatalf("last page: total=%d len=%d", total, len(rows))
	}
	if rows[0].Title != "todo 04" || rows[4].Title != "todo 00" {
		t.Fatalf("desc order: first=%q last=%q", rows[0].Title, rows[4].Title)
	}
}

func TestTodoRepoGetPageSortsEnumsByRank(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewTodoRepo(db, testutil.Logger(t))

	owner := testutil.SeedEmail(t, ctx, db, "owner@example.com", "Owner")
	seed := []struct {
		title    string
		priority domain.Priority
		stage    domain.Stage
	}{
		{"high", domain.PriorityHigh, domain.StageTodo},
		{"low", domain.PriorityLow, domain.StageDone},
		{"medium", domain.PriorityMedium, domain.StageInProgress},
	}
	for _, s := range seed {
		row := testutil.SeedTodo(t, ctx, db, owner.ID, s.title, "", time.Now())
		err := db.Model(&domain.Todo{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"priority": string(s.priority), "stage": string(s.stage)}).Error
		if err != nil {
			t.Fatalf("set enums on %s: %v", s.title, err)
		}
	}

	cases := []struct {
		field string
		desc  bool
		want  []string
	}{
		{"priority", false, []string{"low", "medium", "high"}},
		{"priority", true, []string{"high", "medium", "low"}},
		{"stage", false, []string{"high", "medium", "low"}},
		{"stage", true, []string{"low", "medium", "high"}},
	}
	for _, tc := range cases {
		col, err := ParseSortField(tc.field)
		if err != nil {
			t.Fatalf("ParseSortField(%s): %v", tc.field, err)
		}
		rows, _, err := repo.GetPage(dbc, PageQuery{PageNumber: 1, PageSize: 10, SortColumn: col, Descending: tc.desc})
		if err != nil {
			t.Fatalf("GetPage %s desc=%v: %v", tc.field, tc.desc, err)
		}
		got := make([]string, 0, len(rows))
		for _, row := range rows {
			got = append(got, row.Title)
		}
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("%s desc=%v: want=%v got=%v", tc.field, tc.desc, tc.want, got)
		}
	}
}

func TestTodoRepoGetPageSearch(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewTodoRepo(db, testutil.Logger(t))

	owner := testutil.SeedEmail(t, ctx, db, "owner@example.com", "Owner")
	now := time.Now().UTC()
	testutil.SeedTodo(t, ctx, db, owner.ID, "URGENT fix", "", now)
	testutil.SeedTodo(t, ctx, db, owner.ID, "later", "this is urgent too", now)
	testutil.SeedTodo(t, ctx, db, owner.ID, "groceries", "milk", now)
	testutil.SeedTodo(t, ctx, db, owner.ID, "100% done", "", now)

	rows, total, err := repo.GetPage(dbc, PageQuery{PageNumber: 1, PageSize: 10, SortColumn: "id", Search: "urgent"})
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("search urgent: total=%d len=%d", total, len(rows))
	}
	if rows[0].Title != "URGENT fix" || rows[1].Title != "later" {
		t.Fatalf("search urgent: unexpected rows %q, %q", rows[0].Title, rows[1].Title)
	}

	rows, total, err = repo.GetPage(dbc, PageQuery{PageNumber: 1, PageSize: 10, SortColumn: "id", Search: "%"})
	if err != nil {
		t.Fatalf("GetPage percent: %v", err)
	}
	if total != 1 || rows[0].Title != "100% done" {
		t.Fatalf("literal percent search: total=%d", total)
	}

	rows, total, err = repo.GetPage(dbc, PageQuery{PageNumber: 1, PageSize: 10, SortColumn: "id", Search: "nothing-matches"})
	if err != nil {
		t.Fatalf("GetPage none: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("no match: total=%d len=%d", total, len(rows))
	}
}

func TestParseSortField(t *testing.T) {
	cases := map[string]string{
		"":           "created_at",
		"createdAt":  "created_at",
		"CreatedAt":  "created_at",
		"created_at": "created_at",
		"createdBy":  "created_by",
		"Title":      "title",
		"id":         "id",
		"DEADLINE":   "deadline",
	}
	for in, want := range cases {
		got, err := ParseSortField(in)
		if err != nil {
			t.Fatalf("ParseSortField(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseSortField(%q): want=%q got=%q", in, want, got)
		}
	}
	for _, bad := range []string{"owned_id", "password", "id; DROP TABLE todo", "updatedAt"} {
		if _, err := ParseSortField(bad); err == nil {
			t.Fatalf("ParseSortField(%q): expected error", bad)
		}
	}
}

func TestTodoRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	repo := NewTodoRepo(db, testutil.Logger(t))
	got, err := repo.GetByID(dbctx.Context{Ctx: context.Background()}, 404)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID: expected nil, got %+v", got)
	}
}

func TestCommentRepoDeleteScoped(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewCommentRepo(db, testutil.Logger(t))

	owner := testutil.SeedEmail(t, ctx, db, "owner@example.com", "Owner")
	a := testutil.SeedTodo(t, ctx, db, owner.ID, "a", "", time.Now())
	b := testutil.SeedTodo(t, ctx, db, owner.ID, "b", "", time.Now())
	c := testutil.SeedComment(t, ctx, db, b.ID, "on b")

	n, err := repo.DeleteScoped(dbc, a.ID, c.ID)
	if err != nil {
		t.Fatalf("DeleteScoped wrong todo: %v", err)
	}
	if n != 0 {
		t.Fatalf("DeleteScoped wrong todo: removed %d rows", n)
	}
	n, err = repo.DeleteScoped(dbc, b.ID, c.ID)
	if err != nil {
		t.Fatalf("DeleteScoped: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteScoped: want=1 got=%d", n)
	}
}

func TestTagRepoReplaceForTodo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	tags := NewTagRepo(db, testutil.Logger(t))
	todos := NewTodoRepo(db, testutil.Logger(t))

	owner := testutil.SeedEmail(t, ctx, db, "owner@example.com", "Owner")
	row := testutil.SeedTodo(t, ctx, db, owner.ID, "tagged", "", time.Now())

	if err := tags.ReplaceForTodo(dbc, row.ID, []domain.Tag{{Name: domain.TagBugfix}, {Name: domain.TagTask}}); err != nil {
		t.Fatalf("ReplaceForTodo: %v", err)
	}
	if err := tags.ReplaceForTodo(dbc, row.ID, []domain.Tag{{Name: domain.TagTask}, {Name: domain.TagTest}}); err != nil {
		t.Fatalf("ReplaceForTodo second: %v", err)
	}
	got, err := todos.GetByID(dbc, row.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0].Name != domain.TagTask || got.Tags[1].Name != domain.TagTest {
		t.Fatalf("tags after replace: %+v", got.Tags)
	}

	if err := tags.ReplaceForTodo(dbc, row.ID, []domain.Tag{{Name: domain.TagTask}, {Name: domain.TagTask}}); err == nil {
		t.Fatalf("expected unique violation for duplicate tag")
	}
}

func TestEmailAddressRepoList(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewEmailAddressRepo(db, testutil.Logger(t))

	testutil.SeedEmail(t, ctx, db, "alice@example.com", "Alice Smith")
	testutil.SeedEmail(t, ctx, db, "bob@example.com", "Bob")
	testutil.SeedEmail(t, ctx, db, "carol@corp.io", "Carol SMITHSON")

	all, err := repo.List(dbc, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Email != "alice@example.com" || all[2].Email != "carol@corp.io" {
		t.Fatalf("List all: %+v", all)
	}

	got, err := repo.List(dbc, "  SMITH ")
	if err != nil {
		t.Fatalf("List smith: %v", err)
	}
	if len(got) != 2 || got[0].Email != "alice@example.com" || got[1].Email != "carol@corp.io" {
		t.Fatalf("List smith: %+v", got)
	}

	got, err = repo.List(dbc, "EXAMPLE.COM")
	if err != nil {
		t.Fatalf("List example: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List example: want=2 got=%d", len(got))
	}

	found, err := repo.GetByEmail(dbc, "BOB@Example.com")
	if err != nil || found == nil || found.DisplayName != "Bob" {
		t.Fatalf("GetByEmail: row=%+v err=%v", found, err)
	}
}
