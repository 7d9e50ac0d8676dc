package params

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solatis/roundsapi/internal/types"
)

func chain(validators ...Validator) Validator {
	return func(field string, value any) (any, error) {
		var err error
		for _, v := range validators {
			if value, err = v(field, value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		value     any
		want      any
		wantMsg   string
	}{
		// integers
		{name: "integer: decimal string", validator: Integer(), value: "42", want: int64(42)},
		{name: "integer: json number", validator: Integer(), value: json.Number("7"), want: int64(7)},
		{name: "integer: integral float", validator: Integer(), value: 3.0, want: int64(3)},
		{name: "integer: fraction fails", validator: Integer(), value: 3.5, wantMsg: "pageSize should be an integer"},
		{name: "integer: text fails", validator: Integer(), value: "abc", wantMsg: "pageSize should be an integer"},
		{name: "integer: boolean fails", validator: Integer(), value: true, wantMsg: "pageSize should be an integer"},
		{name: "integer: above max safe", validator: Integer(), value: "9007199254740992", wantMsg: "pageSize should be less or equal to 9007199254740991"},
		{name: "max: id bound", validator: chain(Integer(), Max(types.MaxInt)), value: "2147483648", wantMsg: "pageSize should be less or equal to 2147483647"},
		{name: "max: at bound", validator: chain(Integer(), Max(types.MaxInt)), value: "2147483647", want: int64(2147483647)},
		{name: "positive: zero fails", validator: chain(Integer(), Positive()), value: "0", wantMsg: "pageSize should be positive"},
		{name: "non-negative: zero passes", validator: chain(Integer(), NonNegative()), value: "0", want: int64(0)},
		{name: "non-negative: negative fails", validator: chain(Integer(), NonNegative()), value: "-1", wantMsg: "pageSize should be non-negative"},
		{name: "one of int", validator: chain(Integer(), OneOfInt(0, 1)), value: "2", wantMsg: "pageSize should be an element of 0,1"},

		// strings
		{name: "lower + one of", validator: chain(Text(), Lower(), OneOf("asc", "desc")), value: " DESC ", want: "desc"},
		{name: "one of is case-sensitive", validator: chain(Text(), OneOf("asc", "desc")), value: "ASC", wantMsg: "pageSize should be an element of asc,desc"},
		{name: "not empty", validator: chain(Text(), NotEmpty()), value: "   ", wantMsg: "pageSize should be non-empty string"},
		{name: "max length names limit", validator: chain(Text(), MaxLength(5)), value: "abcdef", wantMsg: "pageSize exceeds 5 characters"},
		{name: "max length counts runes", validator: chain(Text(), MaxLength(3)), value: "äöü", want: "äöü"},
		{name: "quote safe: lone quote", validator: chain(Text(), QuoteSafe()), value: `Bob" OR 1=1`, wantMsg: "pageSize contains an unescaped double quote"},
		{name: "quote safe: doubled quote", validator: chain(Text(), QuoteSafe()), value: `say ""hi""`, want: `say ""hi""`},
		{name: "quote safe: trailing quote", validator: chain(Text(), QuoteSafe()), value: `abc"`, wantMsg: "pageSize contains an unescaped double quote"},

		// lists
		{name: "subset: comma list", validator: chain(List(), LowerEach(), SubsetOf("a", "f", "p")), value: "A, f ,P", want: []string{"a", "f", "p"}},
		{name: "subset: names first offender", validator: chain(List(), LowerEach(), SubsetOf("a", "f", "p")), value: "a,x,y", wantMsg: `pageSize contains unknown element "x", should be a subset of a,f,p`},
		{name: "subset: json array", validator: chain(List(), SubsetOf("easy", "hard")), value: []any{"easy", "hard"}, want: []string{"easy", "hard"}},
		{name: "int subset", validator: chain(List(), IntSubsetOf(1, 3, 4)), value: []any{json.Number("1"), json.Number("4")}, want: []int64{1, 4}},
		{name: "int subset: offender", validator: chain(List(), IntSubsetOf(1, 3, 4)), value: "1,2", wantMsg: `pageSize contains unknown element "2", should be a subset of 1,3,4`},

		// dates
		{name: "date: wire format", validator: Date(), value: "2020-01-01T00:00:00.000+0000", want: time.Date(2020, 1, 1, 0, 0, 0, 0, time.FixedZone("", 0))},
		{name: "date: rfc3339 rejected", validator: Date(), value: "2020-01-01T00:00:00Z", wantMsg: "pageSize should be a date in format yyyy-MM-ddTHH:mm:ss.SSSZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.validator("pageSize", tt.value)
			if tt.wantMsg != "" {
				if err == nil {
					t.Fatalf("expected error %q, got value %v", tt.wantMsg, got)
				}
				if err.Error() != tt.wantMsg {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
				}
				if !errors.Is(err, types.ErrInvalidArgument) {
					t.Errorf("error kind = %v, want invalid-argument", types.KindOf(err))
				}
				if types.FieldOf(err) != "pageSize" {
					t.Errorf("error field = %q, want pageSize", types.FieldOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if wantTime, ok := tt.want.(time.Time); ok {
				if !wantTime.Equal(got.(time.Time)) {
					t.Errorf("got %v, want %v", got, wantTime)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRelations(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)

	err := EarlierThan("registrationStartTimeBefore").Check("registrationStartTimeAfter", late, "registrationStartTimeBefore", early)
	if err == nil || err.Error() != "registrationStartTimeAfter should be earlier than registrationStartTimeBefore" {
		t.Errorf("EarlierThan() error = %v", err)
	}
	if err := EarlierThan("b").Check("a", early, "b", early); err != nil {
		t.Errorf("equal bounds should pass, got %v", err)
	}
	if err := NotEarlierThan("startDate").Check("endDate", early, "startDate", late); err == nil {
		t.Error("NotEarlierThan() should reject end before start")
	}
	if err := NotGreaterThan("pointsUpperBound").Check("pointsLowerBound", int64(500), "pointsUpperBound", int64(250)); err == nil {
		t.Error("NotGreaterThan() should reject lower > upper")
	}
}

// Property-based test: doubling every quote always yields a safe string, and
// appending one lone quote to a quote-free string always yields an unsafe one.
func TestQuoteSafe_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("escaped strings are safe", prop.ForAll(
		func(s string) bool {
			return !HasUnescapedQuote(strings.ReplaceAll(s, `"`, `""`))
		},
		gen.AnyString(),
	))

	properties.Property("a lone quote is always unsafe", prop.ForAll(
		func(prefix, suffix string) bool {
			prefix = strings.ReplaceAll(prefix, `"`, "")
			suffix = strings.ReplaceAll(suffix, `"`, "")
			return HasUnescapedQuote(prefix + `"` + suffix)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
