package reminder

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the persistence the renewal engine needs. The SQLite Store
// satisfies it; so does any HTTP or in-memory adapter.
type Store interface {
	List(ctx context.Context) ([]Reminder, error)
	Create(ctx context.Context, d Draft) (*Reminder, error)
}

// NeedsRenewal reports whether r is an expired auto-renewing reminder.
func NeedsRenewal(r Reminder, today Date) bool {
	return bool(r.AutoRenew) && r.EndDate.Before(today)
}

// Candidates returns the reminders that need renewal, in input order.
func Candidates(rs []Reminder, today Date) []Reminder {
	var out []Reminder
	for _, r := range rs {
		if NeedsRenewal(r, today) {
			out = append(out, r)
		}
	}
	return out
}

// FindSuccessor looks in set for a record continuing candidate: same name,
// same auto-renew flag, and a start date strictly inside
// (candidate end, candidate end + 1 year).
func FindSuccessor(candidate Reminder, set []Reminder) (Reminder, bool) {
	lower := candidate.EndDate
	upper := candidate.EndDate.AddYears(1)
	for _, r := range set {
		if r.Name != candidate.Name || r.AutoRenew != candidate.AutoRenew {
			continue
		}
		if r.StartDate.IsZero() {
			continue
		}
		if r.StartDate.After(lower) && r.StartDate.Before(upper) {
			return r, true
		}
	}
	return Reminder{}, false
}

// Successor builds the record that continues candidate for one renewal
// period. The span is inclusive: a 90 day period starting on the 11th ends
// on the 89th day after it.
func Successor(candidate Reminder) Draft {
	d := candidate.Draft
	d.StartDate = candidate.EndDate.AddDays(1)
	d.EndDate = d.StartDate.AddDays(candidate.EffectiveRenewPeriod() - 1)
	d.Normalize()
	return d
}

// Failure is a candidate whose successor could not be created.
type Failure struct {
	Candidate Reminder
	Err       error
}

// Result is the outcome of one renewal scan. Every candidate appears in
// exactly one of Created (as its successor), Skipped or Failures.
type Result struct {
	RunID     string
	Processed int
	Created   []Reminder
	Skipped   []Reminder
	Failures  []Failure
}

// Summary is the count view of a Result.
type Summary struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

func (r Result) Summary() Summary {
	return Summary{
		RunID:     r.RunID,
		Processed: r.Processed,
		Created:   len(r.Created),
		Skipped:   len(r.Skipped),
		Failed:    len(r.Failures),
	}
}

// FailureReport is the client view of a Failure.
type FailureReport struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report is the client view of a Result.
type Report struct {
	Summary
	CreatedReminders []Reminder      `json:"created_reminders"`
	Failures         []FailureReport `json:"failures"`
}

func (r Result) Report() Report {
	rep := Report{
		Summary:          r.Summary(),
		CreatedReminders: append([]Reminder{}, r.Created...),
		Failures:         []FailureReport{},
	}
	for _, f := range r.Failures {
		rep.Failures = append(rep.Failures, FailureReport{ID: f.Candidate.ID, Name: f.Candidate.Name, Error: f.Err.Error()})
	}
	return rep
}

// Engine creates successor records for expired auto-renewing reminders.
// Scans are serialized so that two triggers in the same process cannot both
// pass the duplicate guard for one candidate.
type Engine struct {
	store Store
	log   zerolog.Logger
	mu    sync.Mutex
}

// NewEngine creates an engine writing successors to store.
func NewEngine(store Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With().Str("component", "renewal").Logger(),
	}
}

// Run lists the store and scans the result. Only a failure of that first
// list is returned as an error.
func (e *Engine) Run(ctx context.Context, today Date) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.store.List(ctx)
	if err != nil {
		return Result{}, storeErr("list", err)
	}
	return e.scan(ctx, all, today), nil
}

// Scan renews the candidates found in reminders. The duplicate guard of
// each candidate runs against a fresh listing of the store, so successors
// created by earlier scans are always seen. Per-candidate failures are
// collected in the result and never abort the batch.
func (e *Engine) Scan(ctx context.Context, reminders []Reminder, today Date) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scan(ctx, reminders, today)
}

func (e *Engine) scan(ctx context.Context, reminders []Reminder, today Date) Result {
	res := Result{RunID: uuid.NewString()}
	log := e.log.With().Str("run_id", res.RunID).Logger()

	candidates := Candidates(reminders, today)
	res.Processed = len(candidates)
	if len(candidates) == 0 {
		log.Debug().Str("today", today.String()).Msg("no reminders need renewal")
		return res
	}
	log.Info().Int("candidates", len(candidates)).Str("today", today.String()).Msg("renewal scan started")

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			for _, rest := range candidates[i:] {
				res.Failures = append(res.Failures, Failure{Candidate: rest, Err: err})
			}
			log.Warn().Err(err).Int("abandoned", len(candidates)-i).Msg("renewal scan cancelled")
			break
		}

		current, err := e.store.List(ctx)
		if err != nil {
			err = storeErr("list", err)
			res.Failures = append(res.Failures, Failure{Candidate: c, Err: err})
			log.Error().Stack().Err(err).Int64("id", c.ID).Str("name", c.Name).Msg("duplicate check failed")
			continue
		}

		if existing, ok := FindSuccessor(c, current); ok {
			res.Skipped = append(res.Skipped, c)
			log.Info().
				Int64("id", c.ID).
				Int64("successor_id", existing.ID).
				Str("name", c.Name).
				Msg("successor already exists, skipping")
			continue
		}

		created, err := e.store.Create(ctx, Successor(c))
		if err != nil {
			err = storeErr("create", err)
			res.Failures = append(res.Failures, Failure{Candidate: c, Err: err})
			log.Error().Stack().Err(err).Int64("id", c.ID).Str("name", c.Name).Msg("failed to create successor")
			continue
		}
		res.Created = append(res.Created, *created)
		log.Info().
			Int64("id", c.ID).
			Int64("successor_id", created.ID).
			Str("name", c.Name).
			Str("start_date", created.StartDate.String()).
			Str("end_date", created.EndDate.String()).
			Msg("successor created")
	}

	s := res.Summary()
	log.Info().
		Int("processed", s.Processed).
		Int("created", s.Created).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Msg("renewal scan finished")
	return res
}
