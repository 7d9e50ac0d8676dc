package rounds

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/roundsapi/internal/core/db"
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

// fixedNow is the clock of every test service: round 101 is running.
var fixedNow = time.Date(2020, 2, 1, 12, 30, 0, 0, time.UTC)

var (
	adminUser = types.Principal{UserID: 1, Handle: "alice", Roles: []string{types.RoleAdmin}}
	plainUser = types.Principal{UserID: 2, Handle: "bob"}
	anonymous = types.Principal{}
)

const seedSQL = `
INSERT INTO contest_group (group_id, name) VALUES (1, 'Algorithm');
INSERT INTO season (season_id, name) VALUES (1, '2020');
INSERT INTO contest (contest_id, name, start_date, end_date, status, activate_menu)
    VALUES (1, 'Spring Series', '2020-01-01 00:00:00', '2020-03-31 00:00:00', 'A', 0);

INSERT INTO round (round_id, contest_id, name, short_name, round_type_id, status, practice) VALUES
    (100, 1, 'SRM 100', 'SRM100', 1, 'F', 0),
    (101, 1, 'SRM 101', 'SRM101', 1, 'A', 0),
    (102, NULL, 'TCO Qualifier', NULL, 2, 'P', 0),
    (900, NULL, 'Practice SRM 100', NULL, 1, 'A', 1),
    (901, NULL, 'Practice Marathon 5', NULL, 10, 'A', 1);

INSERT INTO round_segment (round_id, segment_id, start_time, end_time, status) VALUES
    (100, 1, '2020-01-10 09:00:00', '2020-01-10 11:55:00', 'F'),
    (100, 2, '2020-01-10 12:00:00', '2020-01-10 13:15:00', 'F'),
    (100, 5, '2020-01-10 14:00:00', '2020-01-10 15:00:00', 'F'),
    (101, 1, '2020-02-01 09:00:00', '2020-02-01 11:55:00', 'F'),
    (101, 2, '2020-02-01 12:00:00', '2020-02-01 13:15:00', 'A'),
    (101, 5, '2020-02-01 14:00:00', '2020-02-01 15:00:00', 'P'),
    (102, 1, '2020-03-01 09:00:00', '2020-03-01 11:55:00', 'P'),
    (102, 2, '2020-03-01 12:00:00', '2020-03-01 13:15:00', 'P'),
    (102, 5, '2020-03-01 14:00:00', '2020-03-01 15:00:00', 'P');

INSERT INTO problem (problem_id, name) VALUES (1, 'TwoSum'), (2, 'Knapsack');
INSERT INTO component (component_id, problem_id, method_name) VALUES (10, 1, 'solve'), (20, 2, 'best');

INSERT INTO round_component (round_id, component_id, division_id, difficulty, points, success_fraction) VALUES
    (100, 10, 1, 'Easy', 250, 0.9),
    (101, 10, 2, 'Medium', 500, 0.5),
    (102, 20, 1, 'Hard', 1000, 0.1),
    (900, 10, 1, 'Easy', 250, 0.9),
    (901, 20, 1, 'Hard', 1000, 0.12);

INSERT INTO coder (coder_id, handle) VALUES (1, 'alice'), (2, 'bob');
INSERT INTO practice_problem_status (coder_id, round_id, component_id, status, points) VALUES
    (1, 900, 10, 'Passed', 240.5),
    (2, 901, 20, 'Failed', 0);

INSERT INTO room (room_id, round_id, division_id, name) VALUES
    (1, 100, 1, 'Room 1'),
    (2, 100, 2, 'Room 2'),
    (3, 101, 1, 'Room 1');
INSERT INTO room_result (round_id, room_id, coder_id) VALUES
    (100, 1, 1),
    (100, 2, 2),
    (101, 3, 1)
`

// newTestService returns a Service over a migrated, seeded SQLite file.
func newTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()

	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "rounds.db") + "?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	for _, stmt := range splitStatements(seedSQL) {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}

	q, err := db.LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}
	return New(q, Options{Location: time.UTC, DefaultPageSize: 50, Now: func() time.Time { return fixedNow }}), conn
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// req builds a request from alternating key/value pairs.
func req(p types.Principal, kv ...any) params.Input {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return params.Input{Params: m, Principal: p}
}
