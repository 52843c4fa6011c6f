package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ccchat/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunTx 返回不连接数据库的 gormTx，并记录生成的 SQL。
// DryRun 下写语句的 RowsAffected 为 0，相当于记录已被并发修改。
func dryRunTx(t *testing.T) (*gormTx, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=ccchat dbname=ccchat sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
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
	_ = cb.Delete().After("gorm:delete").Register("test:capture", capture)
	return &gormTx{db: db}, &statements
}

func lastSQL(t *testing.T, statements *[]string) string {
	t.Helper()
	if len(*statements) == 0 {
		t.Fatal("no SQL captured")
	}
	return (*statements)[len(*statements)-1]
}

func TestGormTxFindVoteLocksRow(t *testing.T) {
	tx, statements := dryRunTx(t)
	if _, err := tx.FindVote(context.Background(), 1, PostTarget(2)); err != nil {
		t.Fatalf("FindVote: %v", err)
	}
	sql := lastSQL(t, statements)
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("vote lookup should lock the row: %s", sql)
	}
	if !strings.Contains(sql, "user_id = $1 AND target_kind = $2 AND target_id = $3") {
		t.Fatalf("unexpected filter: %s", sql)
	}
}

func TestGormTxStaleWritesConflict(t *testing.T) {
	tx, statements := dryRunTx(t)
	v := &models.Vote{ID: 9, Direction: models.VoteUp}

	if err := tx.UpdateVoteDirection(context.Background(), v, models.VoteDown); !errors.Is(err, ErrVoteConflict) {
		t.Fatalf("update of a changed record should conflict, got %v", err)
	}
	if sql := lastSQL(t, statements); !strings.Contains(sql, "id = $") || !strings.Contains(sql, "AND direction = $") {
		t.Fatalf("update must be conditional on the old direction: %s", sql)
	}
	if v.Direction != models.VoteUp {
		t.Fatalf("record should keep its direction after a conflict")
	}

	if err := tx.DeleteVote(context.Background(), v); !errors.Is(err, ErrVoteConflict) {
		t.Fatalf("delete of a changed record should conflict, got %v", err)
	}
	if sql := lastSQL(t, statements); !strings.Contains(sql, "DELETE FROM") || !strings.Contains(sql, "AND direction = $") {
		t.Fatalf("delete must be conditional on the old direction: %s", sql)
	}
}

func TestGormTxApplyDeltaIsUnclamped(t *testing.T) {
	tx, statements := dryRunTx(t)
	if _, err := tx.applyDelta(context.Background(), CommentTarget(3), delta{up: -1, down: 1}); err != nil {
		t.Fatalf("applyDelta: %v", err)
	}

	var update string
	for _, s := range *statements {
		if strings.HasPrefix(s, "UPDATE") {
			update = s
		}
	}
	if !strings.Contains(update, `"comments"`) {
		t.Fatalf("comment delta should update comments: %q", update)
	}
	if !strings.Contains(update, "upvote_count + $") || !strings.Contains(update, "downvote_count + $") {
		t.Fatalf("counters should be updated relatively: %s", update)
	}
	if strings.Contains(update, "GREATEST") {
		t.Fatalf("counter drift must not be clamped away: %s", update)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{gorm.ErrDuplicatedKey, true},
		{fmt.Errorf("insert vote: %w", gorm.ErrDuplicatedKey), true},
		{&pgconn.PgError{Code: "23505"}, true},
		{fmt.Errorf("insert vote: %w", &pgconn.PgError{Code: "23505"}), true},
		{&pgconn.PgError{Code: "23503"}, false},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Errorf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
