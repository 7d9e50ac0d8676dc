package rounds

import (
	"math"
	"strings"

	"github.com/solatis/roundsapi/internal/core/db"
)

// Storage rows scan query results; response types are what the API returns.
// Each read endpoint maps one to the other field by field.

type challengeRow struct {
	RoundID          int64        `db:"round_id"`
	Name             string       `db:"name"`
	Status           string       `db:"status"`
	StartDate        db.Timestamp `db:"start_date"`
	EndDate          db.Timestamp `db:"end_date"`
	TotalCompetitors int64        `db:"total_competitors"`
	DivICompetitors  int64        `db:"div_i_competitors"`
	DivIICompetitors int64        `db:"div_ii_competitors"`
}

// Challenge is one row of the challenge search.
type Challenge struct {
	RoundID          int64   `json:"roundId"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
	TotalCompetitors int64   `json:"totalCompetitors"`
	DivICompetitors  int64   `json:"divICompetitors"`
	DivIICompetitors int64   `json:"divIICompetitors"`
}

func (s *Service) challenge(r challengeRow) Challenge {
	return Challenge{
		RoundID:          r.RoundID,
		Name:             r.Name,
		Status:           r.Status,
		StartDate:        s.wireTime(r.StartDate),
		EndDate:          s.wireTime(r.EndDate),
		TotalCompetitors: r.TotalCompetitors,
		DivICompetitors:  r.DivICompetitors,
		DivIICompetitors: r.DivIICompetitors,
	}
}

type scheduleRow struct {
	RoundID               int64        `db:"round_id"`
	Name                  string       `db:"name"`
	ShortName             *string      `db:"short_name"`
	Status                string       `db:"status"`
	RegistrationStartTime db.Timestamp `db:"registration_start_time"`
	RegistrationEndTime   db.Timestamp `db:"registration_end_time"`
	CodingStartTime       db.Timestamp `db:"coding_start_time"`
	CodingEndTime         db.Timestamp `db:"coding_end_time"`
	IntermissionStartTime db.Timestamp `db:"intermission_start_time"`
	IntermissionEndTime   db.Timestamp `db:"intermission_end_time"`
	ChallengeStartTime    db.Timestamp `db:"challenge_start_time"`
	ChallengeEndTime      db.Timestamp `db:"challenge_end_time"`
	SystemTestStartTime   db.Timestamp `db:"system_test_start_time"`
	SystemTestEndTime     db.Timestamp `db:"system_test_end_time"`
}

// ScheduledRound is one row of the schedule search.
type ScheduledRound struct {
	RoundID               int64   `json:"roundId"`
	Name                  string  `json:"name"`
	ShortName             *string `json:"shortName"`
	Status                string  `json:"status"`
	RegistrationStartTime *string `json:"registrationStartTime"`
	RegistrationEndTime   *string `json:"registrationEndTime"`
	CodingStartTime       *string `json:"codingStartTime"`
	CodingEndTime         *string `json:"codingEndTime"`
	IntermissionStartTime *string `json:"intermissionStartTime"`
	IntermissionEndTime   *string `json:"intermissionEndTime"`
	ChallengeStartTime    *string `json:"challengeStartTime"`
	ChallengeEndTime      *string `json:"challengeEndTime"`
	SystemTestStartTime   *string `json:"systemTestStartTime"`
	SystemTestEndTime     *string `json:"systemTestEndTime"`
}

func (s *Service) scheduledRound(r scheduleRow) ScheduledRound {
	return ScheduledRound{
		RoundID:               r.RoundID,
		Name:                  r.Name,
		ShortName:             r.ShortName,
		Status:                r.Status,
		RegistrationStartTime: s.wireTime(r.RegistrationStartTime),
		RegistrationEndTime:   s.wireTime(r.RegistrationEndTime),
		CodingStartTime:       s.wireTime(r.CodingStartTime),
		CodingEndTime:         s.wireTime(r.CodingEndTime),
		IntermissionStartTime: s.wireTime(r.IntermissionStartTime),
		IntermissionEndTime:   s.wireTime(r.IntermissionEndTime),
		ChallengeStartTime:    s.wireTime(r.ChallengeStartTime),
		ChallengeEndTime:      s.wireTime(r.ChallengeEndTime),
		SystemTestStartTime:   s.wireTime(r.SystemTestStartTime),
		SystemTestEndTime:     s.wireTime(r.SystemTestEndTime),
	}
}

type practiceRow struct {
	ProblemID       int64   `db:"problem_id"`
	ProblemName     string  `db:"problem_name"`
	RoundID         int64   `db:"round_id"`
	ComponentID     int64   `db:"component_id"`
	RoundTypeID     int64   `db:"round_type_id"`
	Points          float64 `db:"points"`
	Difficulty      string  `db:"difficulty"`
	Status          *string `db:"status"`
	MyPoints        float64 `db:"my_points"`
	SuccessFraction float64 `db:"success_fraction"`
}

// PracticeProblem is one row of the practice-problem search.
type PracticeProblem struct {
	ProblemID      int64   `json:"problemId"`
	ProblemName    string  `json:"problemName"`
	RoundID        int64   `json:"roundId"`
	ComponentID    int64   `json:"componentId"`
	ProblemType    string  `json:"problemType"`
	Points         float64 `json:"points"`
	Difficulty     string  `json:"difficulty"`
	Status         string  `json:"status"`
	MyPoints       float64 `json:"myPoints"`
	PercentSuccess float64 `json:"percentSuccess"`
}

// statusNew is reported for problems the caller has never opened.
const statusNew = "New"

func practiceProblem(r practiceRow) PracticeProblem {
	status := statusNew
	if r.Status != nil && strings.TrimSpace(*r.Status) != "" {
		status = *r.Status
	}
	return PracticeProblem{
		ProblemID:      r.ProblemID,
		ProblemName:    r.ProblemName,
		RoundID:        r.RoundID,
		ComponentID:    r.ComponentID,
		ProblemType:    problemTypeLabel(r.RoundTypeID),
		Points:         r.Points,
		Difficulty:     r.Difficulty,
		Status:         status,
		MyPoints:       r.MyPoints,
		PercentSuccess: math.Round(r.SuccessFraction*10000) / 100,
	}
}

func problemTypeLabel(code int64) string {
	for label, c := range problemTypes {
		if c == code {
			return label
		}
	}
	return "unknown"
}

type problemRoundRow struct {
	RoundID     int64        `db:"round_id"`
	RoundName   string       `db:"round_name"`
	ContestName *string      `db:"contest_name"`
	RoundDate   db.Timestamp `db:"round_date"`
	DivisionID  int64        `db:"division_id"`
	Points      float64      `db:"points"`
	Difficulty  string       `db:"difficulty"`
}

// ProblemRound is one round a problem was used in.
type ProblemRound struct {
	RoundID     int64   `json:"roundId"`
	RoundName   string  `json:"roundName"`
	ContestName string  `json:"contestName"`
	Date        *string `json:"date"`
	DivisionID  int64   `json:"divisionId"`
	Points      float64 `json:"points"`
	Difficulty  string  `json:"difficulty"`
}

// missingContestName stands in for rounds without a contest.
const missingContestName = "N/A"

func (s *Service) problemRound(r problemRoundRow) ProblemRound {
	name := missingContestName
	if r.ContestName != nil && *r.ContestName != "" {
		name = *r.ContestName
	}
	return ProblemRound{
		RoundID:     r.RoundID,
		RoundName:   r.RoundName,
		ContestName: name,
		Date:        s.wireTime(r.RoundDate),
		DivisionID:  r.DivisionID,
		Points:      r.Points,
		Difficulty:  r.Difficulty,
	}
}

type contestRow struct {
	ContestID    int64        `db:"contest_id"`
	Name         string       `db:"name"`
	StartDate    db.Timestamp `db:"start_date"`
	EndDate      db.Timestamp `db:"end_date"`
	Status       *string      `db:"status"`
	GroupID      *int64       `db:"group_id"`
	AdText       *string      `db:"ad_text"`
	AdStart      db.Timestamp `db:"ad_start"`
	AdEnd        db.Timestamp `db:"ad_end"`
	ActivateMenu *int64       `db:"activate_menu"`
	SeasonID     *int64       `db:"season_id"`
}

// Contest is one row of the admin contest list.
type Contest struct {
	ContestID    int64   `json:"contestId"`
	Name         string  `json:"name"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	Status       *string `json:"status"`
	GroupID      *int64  `json:"groupId"`
	AdText       *string `json:"adText"`
	AdStart      *string `json:"adStart"`
	AdEnd        *string `json:"adEnd"`
	ActivateMenu *int64  `json:"activateMenu"`
	SeasonID     *int64  `json:"seasonId"`
}

func (s *Service) contest(r contestRow) Contest {
	return Contest{
		ContestID:    r.ContestID,
		Name:         r.Name,
		StartDate:    s.wireTime(r.StartDate),
		EndDate:      s.wireTime(r.EndDate),
		Status:       r.Status,
		GroupID:      r.GroupID,
		AdText:       r.AdText,
		AdStart:      s.wireTime(r.AdStart),
		AdEnd:        s.wireTime(r.AdEnd),
		ActivateMenu: r.ActivateMenu,
		SeasonID:     r.SeasonID,
	}
}

type roundRow struct {
	RoundID           int64   `db:"round_id"`
	ContestID         *int64  `db:"contest_id"`
	ContestName       *string `db:"contest_name"`
	Name              string  `db:"name"`
	ShortName         *string `db:"short_name"`
	RoundTypeID       int64   `db:"round_type_id"`
	Status            string  `db:"status"`
	RegistrationLimit *int64  `db:"registration_limit"`
	Rated             int64   `db:"rated"`
}

type segmentRow struct {
	SegmentID int64        `db:"segment_id"`
	StartTime db.Timestamp `db:"start_time"`
	EndTime   db.Timestamp `db:"end_time"`
	Status    string       `db:"status"`
}

type eventRow struct {
	EventID         int64   `db:"event_id"`
	EventName       string  `db:"event_name"`
	RegistrationURL *string `db:"registration_url"`
}

// Round is the detail view of one round.
type Round struct {
	RoundID           int64     `json:"roundId"`
	ContestID         *int64    `json:"contestId"`
	ContestName       string    `json:"contestName"`
	Name              string    `json:"name"`
	ShortName         *string   `json:"shortName"`
	RoundTypeID       int64     `json:"roundTypeId"`
	Status            string    `json:"status"`
	RegistrationLimit *int64    `json:"registrationLimit"`
	Rated             bool      `json:"rated"`
	Segments          []Segment `json:"segments"`
	Languages         []int64   `json:"languages"`
	Event             *Event    `json:"event"`
}

// Segment is one lifecycle phase of a round.
type Segment struct {
	SegmentID int64   `json:"segmentId"`
	Name      string  `json:"name"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Status    string  `json:"status"`
}

// Event is the registration event attached to a round.
type Event struct {
	EventID         int64   `json:"eventId"`
	EventName       string  `json:"eventName"`
	RegistrationURL *string `json:"registrationUrl"`
}

func (s *Service) segment(r segmentRow) Segment {
	return Segment{
		SegmentID: r.SegmentID,
		Name:      segmentNames[r.SegmentID],
		StartTime: s.wireTime(r.StartTime),
		EndTime:   s.wireTime(r.EndTime),
		Status:    r.Status,
	}
}
