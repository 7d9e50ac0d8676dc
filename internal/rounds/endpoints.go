package rounds

import (
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/query"
	"github.com/solatis/roundsapi/internal/types"
)

// Field names shared by several endpoints.
const (
	fieldAdmin     = "admin"
	fieldPrincipal = "principal"
	fieldRoundID   = "roundId"
	fieldContestID = "contestId"
	fieldProblemID = "problemId"
	fieldCoderID   = "coderId"
)

// Segment identifiers of a round's phases, as stored in round_segment.
const (
	segmentRegistration = 1
	segmentCoding       = 2
	segmentIntermission = 3
	segmentChallenge    = 4
	segmentSystemTest   = 5
)

var segmentNames = map[int64]string{
	segmentRegistration: "registration",
	segmentCoding:       "coding",
	segmentIntermission: "intermission",
	segmentChallenge:    "challenge",
	segmentSystemTest:   "systemTest",
}

// problemTypes maps practice problem type labels to round type codes.
var problemTypes = map[string]int64{
	"srm":        1,
	"tournament": 2,
	"team":       7,
	"long":       10,
}

// languageIDs is the allow-list of round language identifiers.
var languageIDs = []int64{1, 3, 4, 5, 6}

// catalog holds every endpoint's compiled Spec and, for reads, its Dataset.
type catalog struct {
	challenges, schedule, practice, problemRounds, contests *endpoint

	round         *params.Spec
	createContest *params.Spec
	updateContest *params.Spec
	assignRoom    *params.Spec
	setLanguages  *params.Spec
	setEvent      *params.Spec
}

// endpoint is a paged read endpoint.
type endpoint struct {
	spec    *params.Spec
	dataset *query.Dataset
}

func newEndpoint(s *Service, d *query.Dataset, fields ...params.FieldSpec) *endpoint {
	fields = append(fields, query.PageFields(d.Sort, s.opts.DefaultPageSize)...)
	return &endpoint{spec: params.NewSpec(fields...), dataset: d}
}

// newGatedEndpoint is newEndpoint behind gate, paging fields included.
func newGatedEndpoint(s *Service, gate params.FieldSpec, d *query.Dataset, fields ...params.FieldSpec) *endpoint {
	fields = append(fields, query.PageFields(d.Sort, s.opts.DefaultPageSize)...)
	return &endpoint{spec: params.NewSpec(gatedBy(gate, fields...)...), dataset: d}
}

var (
	adminGate = params.FieldSpec{Name: fieldAdmin, Virtual: true, Check: requireAdmin}
	userGate  = params.FieldSpec{Name: fieldPrincipal, Virtual: true, Check: requireUser}
)

// gatedBy prepends gate and makes every field depend on it, so no validator
// or lookup runs before the caller has passed the gate.
func gatedBy(gate params.FieldSpec, fields ...params.FieldSpec) []params.FieldSpec {
	out := []params.FieldSpec{gate}
	for _, f := range fields {
		f.DependsOn = append(append([]string(nil), f.DependsOn...), gate.Name)
		out = append(out, f)
	}
	return out
}

// gated puts fields behind the admin gate.
func gated(fields ...params.FieldSpec) []params.FieldSpec {
	return gatedBy(adminGate, fields...)
}

func newCatalog(s *Service) *catalog {
	return &catalog{
		challenges:    newEndpoint(s, challengesDataset(), challengeFields()...),
		schedule:      newEndpoint(s, scheduleDataset(), scheduleFields()...),
		practice:      newGatedEndpoint(s, userGate, practiceDataset(), practiceFields()...),
		problemRounds: newEndpoint(s, problemRoundsDataset(), problemRoundsFields(s)...),
		contests:      newGatedEndpoint(s, adminGate, contestsDataset()),

		round: params.NewSpec(params.FieldSpec{
			Name: fieldRoundID, Required: true, Type: params.TypeBoundedInteger,
		}),
		createContest: params.NewSpec(gated(contestFields(s)...)...),
		updateContest: params.NewSpec(gated(append(contestFields(s),
			params.FieldSpec{
				Name: fieldContestID, Required: true, Type: params.TypeBoundedInteger,
				Check: s.exists("contest-exists"),
			},
			params.FieldSpec{
				Name: "id", Type: params.TypeBoundedInteger,
				DependsOn: []string{fieldContestID}, Check: s.unusedContestID,
			},
		)...)...),
		assignRoom: params.NewSpec(gated(
			params.FieldSpec{Name: fieldRoundID, Required: true, Type: params.TypeBoundedInteger, Check: s.exists("round-exists")},
			params.FieldSpec{Name: "roomId", Required: true, Type: params.TypeBoundedInteger, Check: s.roomInRound},
			params.FieldSpec{Name: fieldCoderID, Required: true, Type: params.TypeBoundedInteger, Check: s.exists("coder-exists")},
		)...),
		setLanguages: params.NewSpec(gated(
			params.FieldSpec{Name: fieldRoundID, Required: true, Type: params.TypeBoundedInteger, Check: s.exists("round-exists")},
			params.FieldSpec{
				Name: "languages", Required: true, Type: params.TypeEnumArray,
				Validators: []params.Validator{params.IntSubsetOf(languageIDs...)},
			},
		)...),
		setEvent: params.NewSpec(gated(
			params.FieldSpec{Name: fieldRoundID, Required: true, Type: params.TypeBoundedInteger, Check: s.exists("round-exists")},
			params.FieldSpec{Name: "eventId", Required: true, Type: params.TypeBoundedInteger},
			params.FieldSpec{
				Name: "eventName", Required: true, Type: params.TypeFreeText,
				Validators: []params.Validator{params.NotEmpty(), params.MaxLength(50), params.QuoteSafe()},
			},
			params.FieldSpec{
				Name: "registrationUrl", Type: params.TypeFreeText,
				Validators: []params.Validator{params.MaxLength(255), params.QuoteSafe()},
			},
		)...),
	}
}

// Challenges

func challengeFields() []params.FieldSpec {
	return []params.FieldSpec{
		{
			Name: "listType", Type: params.TypeEnumString, Default: "active",
			Validators: []params.Validator{params.Lower(), params.OneOf("active", "past", "upcoming")},
		},
		{
			Name: "name", Type: params.TypeFreeText,
			Validators: []params.Validator{params.MaxLength(255), params.QuoteSafe()},
		},
	}
}

func challengesDataset() *query.Dataset {
	return &query.Dataset{
		Name:       "challenges",
		CountQuery: "count-challenges",
		DataQuery:  "search-challenges",
		Filters: []query.FilterClause{
			{Param: "listType", Marker: "listActive", Predicate: "AND coding.start_time <= {?} AND systest.end_time >= {?}", Transform: query.NowIf("active", 2)},
			{Param: "listType", Marker: "listPast", Predicate: "AND systest.end_time < {?}", Transform: query.NowIf("past", 1)},
			{Param: "listType", Marker: "listUpcoming", Predicate: "AND coding.start_time > {?}", Transform: query.NowIf("upcoming", 1)},
			{Param: "name", Predicate: "AND LOWER(r.name) LIKE {?} ESCAPE '!'", Transform: query.Contains()},
		},
		Sort: query.NewSortSpec("startDate", true, "r.round_id",
			query.Column{Name: "roundId", Storage: "r.round_id"},
			query.Column{Name: "name", Storage: "r.name"},
			query.Column{Name: "startDate", Storage: "coding.start_time"},
			query.Column{Name: "totalCompetitors", Storage: "total_competitors"},
			query.Column{Name: "divICompetitors", Storage: "div_i_competitors"},
			query.Column{Name: "divIICompetitors", Storage: "div_ii_competitors"},
		),
	}
}

// Schedule

// schedulePhases pairs each lifecycle phase's parameter prefix with the
// round_segment alias of the schedule queries.
var schedulePhases = []struct{ prefix, alias string }{
	{"registration", "reg"},
	{"coding", "coding"},
	{"intermission", "inter"},
	{"challenge", "chal"},
	{"systemTest", "systest"},
}

var scheduleBounds = []struct{ suffix, column string }{
	{"StartTime", "start_time"},
	{"EndTime", "end_time"},
}

func scheduleFields() []params.FieldSpec {
	fields := []params.FieldSpec{{
		Name: "statuses", Type: params.TypeEnumArray,
		Validators: []params.Validator{params.LowerEach(), params.SubsetOf("f", "a", "p")},
	}}
	for _, phase := range schedulePhases {
		for _, bound := range scheduleBounds {
			before := phase.prefix + bound.suffix + "Before"
			after := phase.prefix + bound.suffix + "After"
			fields = append(fields,
				params.FieldSpec{Name: before, Type: params.TypeDate},
				params.FieldSpec{Name: after, Type: params.TypeDate, Relations: []params.Relation{params.EarlierThan(before)}},
			)
		}
	}
	return fields
}

func scheduleDataset() *query.Dataset {
	filters := []query.FilterClause{
		{Param: "statuses", Predicate: "AND LOWER(r.status) IN ({?})", Transform: query.LowerList()},
	}
	for _, phase := range schedulePhases {
		for _, bound := range scheduleBounds {
			column := phase.alias + "." + bound.column
			filters = append(filters,
				query.FilterClause{Param: phase.prefix + bound.suffix + "Before", Predicate: "AND " + column + " <= {?}", Transform: query.StoreTime()},
				query.FilterClause{Param: phase.prefix + bound.suffix + "After", Predicate: "AND " + column + " >= {?}", Transform: query.StoreTime()},
			)
		}
	}

	return &query.Dataset{
		Name:       "schedule",
		CountQuery: "count-schedule",
		DataQuery:  "search-schedule",
		Filters:    filters,
		Sort: query.NewSortSpec("registrationStartTime", true, "r.round_id",
			query.Column{Name: "roundId", Storage: "r.round_id"},
			query.Column{Name: "name", Storage: "r.name"},
			query.Column{Name: "registrationStartTime", Storage: "reg.start_time"},
			query.Column{Name: "codingStartTime", Storage: "coding.start_time"},
			query.Column{Name: "challengeStartTime", Storage: "chal.start_time"},
			query.Column{Name: "systemTestEndTime", Storage: "systest.end_time"},
			query.Column{Name: "status", Storage: "r.status"},
		),
	}
}

// Practice problems

func practiceFields() []params.FieldSpec {
	bounds := func(name string, validators ...params.Validator) []params.FieldSpec {
		lower, upper := name+"LowerBound", name+"UpperBound"
		return []params.FieldSpec{
			{Name: upper, Type: params.TypeInteger, Validators: append([]params.Validator{params.NonNegative()}, validators...)},
			{
				Name: lower, Type: params.TypeInteger,
				Validators: append([]params.Validator{params.NonNegative()}, validators...),
				Relations:  []params.Relation{params.NotGreaterThan(upper)},
			},
		}
	}

	fields := []params.FieldSpec{
		{
			Name: "problemName", Type: params.TypeFreeText,
			Validators: []params.Validator{params.MaxLength(255), params.QuoteSafe()},
		},
		{
			Name: "types", Type: params.TypeEnumArray,
			Validators: []params.Validator{params.LowerEach(), params.SubsetOf("srm", "tournament", "long", "team")},
		},
		{
			Name: "difficulties", Type: params.TypeEnumArray,
			Validators: []params.Validator{params.LowerEach(), params.SubsetOf("easy", "medium", "hard")},
		},
		{
			Name: "statuses", Type: params.TypeEnumArray,
			Validators: []params.Validator{params.LowerEach(), params.SubsetOf("new", "viewed", "opened", "passed", "failed")},
		},
	}
	fields = append(fields, bounds("points", params.Max(types.MaxInt))...)
	fields = append(fields, bounds("percentSuccess", params.Max(100))...)
	fields = append(fields, bounds("myPoints", params.Max(types.MaxInt))...)
	return fields
}

func practiceDataset() *query.Dataset {
	return &query.Dataset{
		Name:       "practice-problems",
		CountQuery: "count-practice-problems",
		DataQuery:  "search-practice-problems",
		Filters: []query.FilterClause{
			{Param: fieldCoderID, Predicate: "AND s.coder_id = {?}"},
			{Param: "problemName", Predicate: "AND LOWER(p.name) LIKE {?} ESCAPE '!'", Transform: query.Contains()},
			{Param: "types", Predicate: "AND r.round_type_id IN ({?})", Transform: query.Codes(problemTypes)},
			{Param: "difficulties", Predicate: "AND LOWER(rc.difficulty) IN ({?})", Transform: query.LowerList()},
			{Param: "statuses", Predicate: "AND LOWER(COALESCE(s.status, 'new')) IN ({?})", Transform: query.LowerList()},
			{Param: "pointsLowerBound", Predicate: "AND rc.points >= {?}"},
			{Param: "pointsUpperBound", Predicate: "AND rc.points <= {?}"},
			{Param: "percentSuccessLowerBound", Predicate: "AND rc.success_fraction >= {?}", Transform: query.Fraction()},
			{Param: "percentSuccessUpperBound", Predicate: "AND rc.success_fraction <= {?}", Transform: query.Fraction()},
			{Param: "myPointsLowerBound", Predicate: "AND COALESCE(s.points, 0) >= {?}"},
			{Param: "myPointsUpperBound", Predicate: "AND COALESCE(s.points, 0) <= {?}"},
		},
		Sort: query.NewSortSpec("problemId", false, "rc.round_id",
			query.Column{Name: "problemId", Storage: "p.problem_id"},
			query.Column{Name: "problemName", Storage: "p.name"},
			query.Column{Name: "problemType", Storage: "r.round_type_id"},
			query.Column{Name: "points", Storage: "rc.points"},
			query.Column{Name: "difficulty", Storage: "rc.difficulty"},
			query.Column{Name: "status", Storage: "COALESCE(s.status, 'New')"},
			query.Column{Name: "myPoints", Storage: "COALESCE(s.points, 0)"},
			query.Column{Name: "percentSuccess", Storage: "rc.success_fraction"},
		),
	}
}

// Rounds of a problem

func problemRoundsFields(s *Service) []params.FieldSpec {
	return []params.FieldSpec{{
		Name: fieldProblemID, Required: true, Type: params.TypeBoundedInteger,
		Check: s.exists("problem-exists"),
	}}
}

func problemRoundsDataset() *query.Dataset {
	return &query.Dataset{
		Name:       "problem-rounds",
		CountQuery: "count-problem-rounds",
		DataQuery:  "search-problem-rounds",
		Filters: []query.FilterClause{
			{Param: fieldProblemID, Predicate: "AND c.problem_id = {?}"},
		},
		Sort: query.NewSortSpec("date", true, "r.round_id",
			query.Column{Name: "roundId", Storage: "r.round_id"},
			query.Column{Name: "contestName", Storage: "ct.name"},
			query.Column{Name: "date", Storage: "coding.start_time"},
		),
	}
}

// Contests

func contestsDataset() *query.Dataset {
	return &query.Dataset{
		Name:       "contests",
		CountQuery: "count-contests",
		DataQuery:  "search-contests",
		Sort: query.NewSortSpec("contestId", false, "c.contest_id",
			query.Column{Name: "contestId", Storage: "c.contest_id"},
			query.Column{Name: "name", Storage: "c.name"},
			query.Column{Name: "startDate", Storage: "c.start_date"},
			query.Column{Name: "status", Storage: "c.status"},
		),
	}
}

// contestFields are the descriptive fields of contest create and update.
func contestFields(s *Service) []params.FieldSpec {
	return []params.FieldSpec{
		{
			Name: "name", Required: true, Type: params.TypeFreeText,
			Validators: []params.Validator{params.NotEmpty(), params.MaxLength(128), params.QuoteSafe()},
		},
		{Name: "startDate", Required: true, Type: params.TypeDate},
		{
			Name: "endDate", Required: true, Type: params.TypeDate,
			Relations: []params.Relation{params.NotEarlierThan("startDate")},
		},
		{
			Name: "status", Type: params.TypeEnumString,
			Validators: []params.Validator{params.OneOf("A", "F", "P")},
		},
		{Name: "groupId", Type: params.TypeBoundedInteger, Check: s.exists("group-exists")},
		{Name: "adStart", Type: params.TypeDate},
		{
			Name: "adEnd", Type: params.TypeDate,
			Relations: []params.Relation{params.NotEarlierThan("adStart")},
		},
		{
			Name: "adText", Type: params.TypeFreeText,
			Validators:   []params.Validator{params.MaxLength(250), params.QuoteSafe()},
			RequiredWith: []string{"adStart", "adEnd"},
		},
		{
			Name: "activateMenu", Type: params.TypeInteger,
			Validators: []params.Validator{params.OneOfInt(0, 1)},
		},
		{Name: "seasonId", Type: params.TypeBoundedInteger, Check: s.exists("season-exists")},
	}
}
