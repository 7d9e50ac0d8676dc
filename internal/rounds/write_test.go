package rounds

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/solatis/roundsapi/internal/core/db"
	"github.com/solatis/roundsapi/internal/types"
)

func contestParams(kv ...any) []any {
	base := []any{
		"name", "Summer Series",
		"startDate", "2020-06-01T00:00:00.000+0000",
		"endDate", "2020-08-31T00:00:00.000+0000",
	}
	return append(base, kv...)
}

func countRows(t *testing.T, conn *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := conn.Get(&n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func TestCreateContest(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateContest(ctx, req(adminUser, contestParams("status", "P", "groupId", "1")...))
	if err != nil {
		t.Fatalf("CreateContest() error = %v", err)
	}
	if id != 1001 {
		t.Errorf("id = %d, want 1001", id)
	}

	var stored struct {
		Name      string       `db:"name"`
		StartDate db.Timestamp `db:"start_date"`
		GroupID   *int64       `db:"group_id"`
	}
	if err := conn.Get(&stored, "SELECT name, start_date, group_id FROM contest WHERE contest_id = ?", id); err != nil {
		t.Fatalf("read back: %v", err)
	}
	start, _ := stored.StartDate.In(time.UTC)
	if stored.Name != "Summer Series" || !start.Equal(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)) || stored.GroupID == nil || *stored.GroupID != 1 {
		t.Errorf("stored = %+v", stored)
	}

	next, err := svc.CreateContest(ctx, req(adminUser, contestParams()...))
	if err != nil || next != 1002 {
		t.Errorf("second CreateContest() = %d, %v", next, err)
	}
}

func TestCreateContest_Rejections(t *testing.T) {
	svc, conn := newTestService(t)

	tests := []struct {
		name      string
		user      types.Principal
		params    []any
		wantKind  error
		wantField string
		wantMsg   string
	}{
		{"anonymous", anonymous, nil, types.ErrUnauthenticated, "", ""},
		{"gate precedes validation", plainUser, []any{"name", `bad"quote`}, types.ErrForbidden, "", ""},
		{"missing name", adminUser, []any{"startDate", "2020-06-01T00:00:00.000+0000"}, types.ErrInvalidArgument, "name", "name is required"},
		{"unknown group", adminUser, contestParams("groupId", "99"), types.ErrNotFound, "groupId", "groupId 99 does not exist"},
		{"unknown season", adminUser, contestParams("seasonId", "7"), types.ErrNotFound, "seasonId", ""},
		{
			"ad window without text", adminUser,
			contestParams("adStart", "2020-05-01T00:00:00.000+0000"),
			types.ErrInvalidArgument, "adText", "adText is required when adStart is present",
		},
		{
			"end before start", adminUser,
			[]any{"name", "x", "startDate", "2020-06-01T00:00:00.000+0000", "endDate", "2020-05-01T00:00:00.000+0000"},
			types.ErrInvalidArgument, "endDate", "endDate should not be earlier than startDate",
		},
		{"bad status", adminUser, contestParams("status", "X"), types.ErrInvalidArgument, "status", ""},
		{"bad activate menu", adminUser, contestParams("activateMenu", "2"), types.ErrInvalidArgument, "activateMenu", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateContest(context.Background(), req(tt.user, tt.params...))
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			if got := types.FieldOf(err); got != tt.wantField {
				t.Errorf("FieldOf() = %q, want %q", got, tt.wantField)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}

	if n := countRows(t, conn, "SELECT COUNT(*) FROM contest"); n != 1 {
		t.Errorf("contests = %d, want 1", n)
	}
}

func TestUpdateContest(t *testing.T) {
	t.Run("same id updates in place", func(t *testing.T) {
		svc, conn := newTestService(t)
		err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "1", "id", "1")...))
		if err != nil {
			t.Fatalf("UpdateContest() error = %v", err)
		}
		var name string
		if err := conn.Get(&name, "SELECT name FROM contest WHERE contest_id = 1"); err != nil || name != "Summer Series" {
			t.Errorf("name = %q, %v", name, err)
		}
	})

	t.Run("new id moves contest and rounds", func(t *testing.T) {
		svc, conn := newTestService(t)
		err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "1", "id", "7")...))
		if err != nil {
			t.Fatalf("UpdateContest() error = %v", err)
		}
		if n := countRows(t, conn, "SELECT COUNT(*) FROM contest WHERE contest_id = 1"); n != 0 {
			t.Errorf("old contest rows = %d, want 0", n)
		}
		if n := countRows(t, conn, "SELECT COUNT(*) FROM contest WHERE contest_id = 7 AND name = 'Summer Series'"); n != 1 {
			t.Errorf("new contest rows = %d, want 1", n)
		}
		if n := countRows(t, conn, "SELECT COUNT(*) FROM round WHERE contest_id = 7"); n != 2 {
			t.Errorf("relinked rounds = %d, want 2", n)
		}
	})

	t.Run("taken id", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.CreateContest(context.Background(), req(adminUser, contestParams()...)); err != nil {
			t.Fatal(err)
		}
		err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "1", "id", "1001")...))
		if !errors.Is(err, types.ErrInvalidArgument) || err.Error() != "id 1001 already exists" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("unknown contest", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "404")...))
		if !errors.Is(err, types.ErrNotFound) || types.FieldOf(err) != "contestId" {
			t.Errorf("error = %v", err)
		}
	})
}

func TestAssignRoom(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	if err := svc.AssignRoom(ctx, req(adminUser, "roundId", "101", "roomId", "3", "coderId", "2")); err != nil {
		t.Fatalf("AssignRoom() error = %v", err)
	}
	if n := countRows(t, conn, "SELECT COUNT(*) FROM room_result WHERE round_id = 101"); n != 2 {
		t.Errorf("room results = %d, want 2", n)
	}

	tests := []struct {
		name      string
		params    []any
		wantKind  error
		wantField string
	}{
		{"room of another round", []any{"roundId", "101", "roomId", "1", "coderId", "2"}, types.ErrNotFound, "roomId"},
		{"unknown round", []any{"roundId", "555", "roomId", "1", "coderId", "2"}, types.ErrNotFound, "roundId"},
		{"unknown coder", []any{"roundId", "100", "roomId", "1", "coderId", "9"}, types.ErrNotFound, "coderId"},
		{"missing room", []any{"roundId", "100", "coderId", "1"}, types.ErrInvalidArgument, "roomId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AssignRoom(ctx, req(adminUser, tt.params...))
			if !errors.Is(err, tt.wantKind) || types.FieldOf(err) != tt.wantField {
				t.Errorf("error = %v (field %q), want %v on %q", err, types.FieldOf(err), tt.wantKind, tt.wantField)
			}
		})
	}
}

func TestSetRoundLanguages(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	languages := func() []int64 {
		t.Helper()
		round, err := svc.GetRound(ctx, req(anonymous, "roundId", "100"))
		if err != nil {
			t.Fatalf("GetRound() error = %v", err)
		}
		return round.Languages
	}

	if err := svc.SetRoundLanguages(ctx, req(adminUser, "roundId", "100", "languages", "3,1,3")); err != nil {
		t.Fatalf("SetRoundLanguages() error = %v", err)
	}
	if got := languages(); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("languages = %v, want [1 3]", got)
	}

	if err := svc.SetRoundLanguages(ctx, req(adminUser, "roundId", "100", "languages", []any{"6"})); err != nil {
		t.Fatalf("SetRoundLanguages() error = %v", err)
	}
	if got := languages(); !reflect.DeepEqual(got, []int64{6}) {
		t.Errorf("languages = %v, want [6]", got)
	}

	err := svc.SetRoundLanguages(ctx, req(adminUser, "roundId", "100", "languages", "1,2"))
	if types.FieldOf(err) != "languages" || err.Error() != `languages contains unknown element "2", should be a subset of 1,3,4,5,6` {
		t.Errorf("error = %v", err)
	}
	if got := languages(); !reflect.DeepEqual(got, []int64{6}) {
		t.Errorf("rejected request changed languages to %v", got)
	}
}

func TestSetRoundEvent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetRoundEvent(ctx, req(adminUser, "roundId", "102", "eventId", "5", "eventName", "TCO20")); err != nil {
		t.Fatalf("SetRoundEvent() error = %v", err)
	}
	err := svc.SetRoundEvent(ctx, req(adminUser, "roundId", "102", "eventId", "6", "eventName", "TCO21",
		"registrationUrl", "https://example.com/tco21"))
	if err != nil {
		t.Fatalf("SetRoundEvent() error = %v", err)
	}

	round, err := svc.GetRound(ctx, req(anonymous, "roundId", "102"))
	if err != nil {
		t.Fatalf("GetRound() error = %v", err)
	}
	if round.Event == nil || round.Event.EventID != 6 || round.Event.EventName != "TCO21" ||
		round.Event.RegistrationURL == nil || *round.Event.RegistrationURL != "https://example.com/tco21" {
		t.Errorf("event = %+v", round.Event)
	}

	err = svc.SetRoundEvent(ctx, req(adminUser, "roundId", "102", "eventId", "7", "eventName", " "))
	if types.FieldOf(err) != "eventName" {
		t.Errorf("blank name error = %v", err)
	}
}

// newMockService returns a Service whose statements are checked against
// sqlmock expectations, in order.
func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	q, err := db.LoadQueries(sqlx.NewDb(conn, "sqlite3"))
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}
	return New(q, Options{Location: time.UTC, Now: func() time.Time { return fixedNow }}), mock
}

func countResult(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestUpdateContest_StatementOrder(t *testing.T) {
	t.Run("identity change", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contest WHERE contest_id = \?`).WithArgs(int64(5)).WillReturnRows(countResult(1))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contest WHERE contest_id = \?`).WithArgs(int64(42)).WillReturnRows(countResult(0))
		mock.ExpectExec(`(?s)INSERT INTO contest .* SELECT \?, name`).WithArgs(int64(42), int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`(?s)UPDATE contest\s+SET name`).
			WithArgs("Summer Series", "2020-06-01 00:00:00", "2020-08-31 00:00:00", nil, nil, nil, nil, nil, nil, nil, int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE round SET contest_id = \? WHERE contest_id = \?`).WithArgs(int64(42), int64(5)).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM contest WHERE contest_id = \?`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))

		if err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "5", "id", "42")...)); err != nil {
			t.Fatalf("UpdateContest() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("same identity", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contest`).WithArgs(int64(5)).WillReturnRows(countResult(1))
		mock.ExpectExec(`(?s)UPDATE contest\s+SET name`).WillReturnResult(sqlmock.NewResult(0, 1))

		if err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "5")...)); err != nil {
			t.Fatalf("UpdateContest() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("failed copy aborts the rest", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contest`).WithArgs(int64(5)).WillReturnRows(countResult(1))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contest`).WithArgs(int64(42)).WillReturnRows(countResult(0))
		mock.ExpectExec(`(?s)INSERT INTO contest`).WillReturnError(errors.New("disk full"))

		err := svc.UpdateContest(context.Background(), req(adminUser, contestParams("contestId", "5", "id", "42")...))
		if !errors.Is(err, types.ErrInternal) {
			t.Fatalf("error = %v, want internal", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestCreateContest_StatementOrder(t *testing.T) {
	svc, mock := newMockService(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE sequence_object SET current_value = current_value \+ 1 WHERE name = \?`).
		WithArgs(db.ContestSequence).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT current_value FROM sequence_object WHERE name = \?`).
		WithArgs(db.ContestSequence).WillReturnRows(sqlmock.NewRows([]string{"current_value"}).AddRow(2001))
	mock.ExpectCommit()
	mock.ExpectExec(`(?s)INSERT INTO contest .* VALUES`).
		WithArgs(int64(2001), "Summer Series", "2020-06-01 00:00:00", "2020-08-31 00:00:00", nil, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(2001, 1))

	id, err := svc.CreateContest(context.Background(), req(adminUser, contestParams()...))
	if err != nil || id != 2001 {
		t.Fatalf("CreateContest() = %d, %v", id, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
