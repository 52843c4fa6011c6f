package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ccchat/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB 生成 SQL 但不连接数据库，返回已执行语句的记录
func dryRunDB(t *testing.T, now func() time.Time) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=ccchat dbname=ccchat sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		NowFunc:                now,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	var statements []string
	capture := func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}
	cb := db.Callback()
	_ = cb.Query().After("gorm:query").Register("test:capture", capture)
	_ = cb.Create().After("gorm:create").Register("test:capture", capture)
	_ = cb.Update().After("gorm:update").Register("test:capture", capture)
	return db, &statements
}

func TestCheckReplyParent(t *testing.T) {
	deletedAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		parent models.Comment
		want   error
	}{
		{"same post", models.Comment{ID: 3, PostID: 1}, nil},
		{"other post", models.Comment{ID: 3, PostID: 2}, ErrParentMismatch},
		{"deleted parent", models.Comment{ID: 3, PostID: 1, DeletedAt: &deletedAt}, ErrCommentNotFound},
	}
	for _, tc := range cases {
		if err := checkReplyParent(1, &tc.parent); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestInsertCommentBumpsCountInSameTx(t *testing.T) {
	db, statements := dryRunDB(t, nil)

	_, parent, comment, err := insertComment(db, 7, 1, "第一条评论", nil)
	if err != nil {
		t.Fatalf("insertComment: %v", err)
	}
	if parent != nil || comment.PostID != 1 || comment.UserID != 7 {
		t.Fatalf("unexpected comment %+v parent %+v", comment, parent)
	}

	if len(*statements) != 3 {
		t.Fatalf("expected lock, insert and count update, got %q", *statements)
	}
	lock, insert, bump := (*statements)[0], (*statements)[1], (*statements)[2]
	if !strings.Contains(lock, `FROM "posts"`) || !strings.Contains(lock, "FOR SHARE") {
		t.Fatalf("post should be locked first: %s", lock)
	}
	if !strings.HasPrefix(insert, `INSERT INTO "comments"`) {
		t.Fatalf("expected comment insert, got %s", insert)
	}
	if !strings.HasPrefix(bump, `UPDATE "posts" SET "comment_count"=comment_count + $1`) {
		t.Fatalf("expected comment_count increment, got %s", bump)
	}
}

func TestInsertCommentRejectsForeignParent(t *testing.T) {
	db, statements := dryRunDB(t, nil)

	// 干跑时父评论读出为零值，PostID 为 0，与帖子 1 不符
	parentID := uint(3)
	if _, _, _, err := insertComment(db, 7, 1, "回复", &parentID); !errors.Is(err, ErrParentMismatch) {
		t.Fatalf("expected ErrParentMismatch, got %v", err)
	}
	for _, s := range *statements {
		if strings.HasPrefix(s, "INSERT") || strings.HasPrefix(s, "UPDATE") {
			t.Fatalf("nothing should be written for a mismatched parent: %s", s)
		}
	}
}
