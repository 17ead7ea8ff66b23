// Package numbering resolves configurable document number formats and scans
// assigned numbers to compute the next free sequence counter.
//
// A format is a template like "RE-{YYYY}-{####}": the date tokens {YYYY}
// {YY} {MM} {DD} are substituted from the document date, the single sequence
// run {#...#} is substituted with the counter zero-padded to the run length.
// Everything before the sequence run, after substitution, is the scope: all
// numbers sharing a scope share one counter, so a format containing {YYYY}
// restarts at 1 each year and one containing {YYYY}{MM} each month.
//
// All functions are pure. Callers that assign numbers must serialize the
// read-compute-persist cycle per scope themselves (see application/numbering).
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rechnungswerk/fiscal/internal/domain"
)

// DefaultSequenceWidth is the zero-padding width used when a format carries
// no sequence run.
const DefaultSequenceWidth = 4

// DefaultFormat is appended to legacy bare prefixes by NormaliseToFormat.
const DefaultFormat = "{YYYY}-{####}"

var sequenceRun = regexp.MustCompile(`\{#+\}`)

func substituteDate(format string, date time.Time) string {
	r := strings.NewReplacer(
		"{YYYY}", date.Format("2006"),
		"{YY}", date.Format("06"),
		"{MM}", date.Format("01"),
		"{DD}", date.Format("02"),
	)
	return r.Replace(format)
}

// Validate rejects formats with more than one sequence run. A second run
// would make the trailing-substring scan ambiguous and with it the counter,
// so this must fail before any number is ever assigned.
func Validate(format string) error {
	if runs := sequenceRun.FindAllString(format, -1); len(runs) > 1 {
		return fmt.Errorf("%w: %q contains %d sequence tokens, at most one is allowed",
			domain.ErrInvalidFormat, format, len(runs))
	}
	return nil
}

// IsLiteral reports whether the format contains neither date tokens nor a
// sequence run. Such a format resolves to the same constant string on every
// call, which is almost certainly an operator misconfiguration.
func IsLiteral(format string) bool {
	if sequenceRun.MatchString(format) {
		return false
	}
	return substituteDate(format, time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)) == format
}

// SequenceWidth returns the zero-padding width of the format's sequence run,
// or DefaultSequenceWidth if the format has none.
func SequenceWidth(format string) int {
	run := sequenceRun.FindString(format)
	if run == "" {
		return DefaultSequenceWidth
	}
	return len(run) - 2 // strip the braces
}

// Resolve substitutes the date tokens and the sequence run. The counter must
// be ≥ 1; Resolve does not validate it. A format without a sequence run
// resolves to the date-substituted literal.
func Resolve(format string, counter int, date time.Time) string {
	s := substituteDate(format, date)
	loc := sequenceRun.FindStringIndex(s)
	if loc == nil {
		return s
	}
	width := loc[1] - loc[0] - 2
	return s[:loc[0]] + fmt.Sprintf("%0*d", width, counter) + s[loc[1]:]
}

// ScopePrefix substitutes the date tokens and truncates at the sequence run.
// Two numbers belong to the same counter scope iff their prefixes are equal.
// Without a sequence run the fully substituted string is returned unchanged.
func ScopePrefix(format string, date time.Time) string {
	s := substituteDate(format, date)
	loc := sequenceRun.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]]
}

// LastSequential scans existing numbers for the highest counter used within
// the format's scope at the given date. The counter is read as the trailing
// substring of exactly the sequence width; this mirrors how Resolve writes
// it, so writer and reader enforce the same fixed-width contract. Numbers
// outside the scope (a different year, a different prefix) are ignored.
// Returns 0 when no number matches.
func LastSequential(format string, existing []string, date time.Time) int {
	prefix := ScopePrefix(format, date)
	width := SequenceWidth(format)

	last := 0
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) || len(number) < len(prefix)+width {
			continue
		}
		n, err := strconv.Atoi(number[len(number)-width:])
		if err != nil {
			continue
		}
		if n > last {
			last = n
		}
	}
	return last
}

// Next resolves the next free number within the scope. minCounter is an
// operator-configured floor ("start numbering at N"): it can only move the
// sequence forward, never backwards, so imported historical numbers can
// never cause a duplicate. minCounter values below 1 are treated as 1.
//
// A counter that no longer fits the sequence width exhausts the scope: a
// widened number would fall outside the fixed-width scan of LastSequential,
// so later calls would under-read the history and re-issue assigned numbers.
// Next refuses with domain.ErrNumberExhausted instead.
func Next(format string, existing []string, date time.Time, minCounter int) (string, error) {
	if minCounter < 1 {
		minCounter = 1
	}
	counter := LastSequential(format, existing, date)
	if minCounter-1 > counter {
		counter = minCounter - 1
	}
	counter++
	if sequenceRun.MatchString(format) && counter > maxCounter(SequenceWidth(format)) {
		return "", fmt.Errorf("%w: format %q cannot represent counter %d",
			domain.ErrNumberExhausted, format, counter)
	}
	return Resolve(format, counter, date), nil
}

// maxCounter returns the highest counter a sequence run of the given width
// can hold (10^width − 1).
func maxCounter(width int) int {
	max := 1
	for i := 0; i < width; i++ {
		max *= 10
	}
	return max - 1
}

// NormaliseToFormat upgrades a legacy bare number prefix (e.g. "RE-") to a
// full format. Inputs that already contain a token pass through unchanged;
// anything else is stripped of trailing separators and given the default
// year+sequence suffix.
func NormaliseToFormat(legacy string) string {
	if strings.Contains(legacy, "{") {
		return legacy
	}
	trimmed := strings.TrimRight(legacy, "-_/. ")
	if trimmed == "" {
		return DefaultFormat
	}
	return trimmed + "-" + DefaultFormat
}
