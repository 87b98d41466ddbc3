package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"crystalline/internal/storage"
)

// txRetries bounds retries of a user transaction after a version conflict
// with a writer in another process before the conflict is surfaced to the
// caller as retryable.
const txRetries = 3

type Service struct {
	db       *sql.DB
	profiles *storage.ProfileRepo
	tasks    *storage.TaskRepo
	moods    *storage.MoodRepo
	crystals *storage.CrystalRepo
	growth   *storage.GrowthRepo

	synergies []Synergy
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Service)

// WithLogger attaches a zap logger; the engine is silent by default so it
// can be embedded as a library.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSynergies replaces the builtin synergy catalog.
func WithSynergies(syn []Synergy) Option {
	return func(s *Service) { s.synergies = syn }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		profiles:  storage.NewProfileRepo(db),
		tasks:     storage.NewTaskRepo(db),
		moods:     storage.NewMoodRepo(db),
		crystals:  storage.NewCrystalRepo(db),
		growth:    storage.NewGrowthRepo(db),
		synergies: BuiltinSynergies(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ProfileRepo() *storage.ProfileRepo { return s.profiles }
func (s *Service) TaskRepo() *storage.TaskRepo       { return s.tasks }
func (s *Service) MoodRepo() *storage.MoodRepo       { return s.moods }
func (s *Service) CrystalRepo() *storage.CrystalRepo { return s.crystals }
func (s *Service) GrowthRepo() *storage.GrowthRepo   { return s.growth }
func (s *Service) Synergies() []Synergy              { return s.synergies }

// userLock serializes actions for one user. Different users never share a
// lock and proceed fully in parallel.
func (s *Service) userLock(uid string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = map[string]*sync.Mutex{}
	}
	l, ok := s.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		s.locks[uid] = l
	}
	return l
}

// runUserTx runs fn inside a database transaction, retrying when a writer
// in another process bumped the aggregate version underneath it. The
// caller must hold the user's lock, so in-process actions never conflict
// with each other.
func (s *Service) runUserTx(ctx context.Context, uid string, fn func(tx *sql.Tx) error) error {
	for attempt := 0; ; attempt++ {
		err := storage.WithTx(ctx, s.db, fn)
		if err == nil || !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		if attempt+1 >= txRetries {
			return fmt.Errorf("%w: %s", ErrVersionConflict, uid)
		}
		s.logger.Debug("crystal save conflict, retrying",
			zap.String("uid", uid), zap.Int("attempt", attempt+1))
	}
}

// HandleAction runs the full pipeline for one growth-bearing action:
// classify, finalize the amount, append the audit record, and commit the
// aggregate update. Task completions carry XP as well and go through
// CompleteTask, which folds this into its own transaction.
func (s *Service) HandleAction(ctx context.Context, a ActionDescriptor) (*GrowthOutcome, error) {
	draft, err := Classify(a)
	if err != nil {
		return nil, err
	}
	return s.applyDraft(ctx, draft)
}

// applyDraft runs one growth draft as its own user transaction.
func (s *Service) applyDraft(ctx context.Context, draft GrowthDraft) (*GrowthOutcome, error) {
	if draft.IdempotencyKey == "" {
		return nil, InvalidGrowthRecordError{Reason: "missing idempotency key"}
	}

	lock := s.userLock(draft.UID)
	lock.Lock()
	defer lock.Unlock()

	var outcome *GrowthOutcome
	err := s.runUserTx(ctx, draft.UID, func(tx *sql.Tx) error {
		var err error
		outcome, err = s.applyGrowth(ctx, tx, draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyGrowth applies one growth draft inside the caller's transaction:
// the duplicate check, the audit insert, the aggregate apply, the
// versioned save and the profile gauge mirror commit or roll back
// together. A rejected or conflicted apply therefore never burns the
// idempotency key.
func (s *Service) applyGrowth(ctx context.Context, tx *sql.Tx, draft GrowthDraft) (*GrowthOutcome, error) {
	if draft.IdempotencyKey == "" {
		return nil, InvalidGrowthRecordError{Reason: "missing idempotency key"}
	}
	if draft.Timestamp.IsZero() {
		draft.Timestamp = time.Now().UTC()
	}

	crystals := s.crystals.WithTx(tx)
	growth := s.growth.WithTx(tx)

	sys, err := s.loadSystem(ctx, crystals, draft.UID)
	if err != nil {
		return nil, err
	}

	prior, err := growth.GetByKey(ctx, draft.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return s.duplicateOutcome(sys, draft, prior), nil
	}

	rec, err := sys.FinalizeGrowth(draft)
	if err != nil {
		return nil, err
	}
	_, inserted, err := growth.Insert(ctx, storage.GrowthRecordRow{
		UID:            rec.UID,
		Attribute:      string(rec.Attribute),
		EventKind:      string(rec.EventKind),
		Amount:         rec.Amount,
		IdempotencyKey: rec.IdempotencyKey,
		Context:        rec.Context,
		CreatedAt:      rec.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Another process claimed the key between the check and the insert.
		prior, err = growth.GetByKey(ctx, draft.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		return s.duplicateOutcome(sys, draft, prior), nil
	}

	outcome, err := sys.Apply(rec, s.synergies)
	if err != nil {
		return nil, err
	}
	if err := s.saveSystem(ctx, crystals, sys); err != nil {
		return nil, err
	}
	if err := s.syncProfileGauges(ctx, s.profiles.WithTx(tx), draft.UID, sys); err != nil {
		return nil, err
	}

	s.logger.Info("growth applied",
		zap.String("uid", draft.UID),
		zap.String("attribute", string(outcome.Attribute)),
		zap.Int("amount", outcome.GrowthApplied),
		zap.Int("value", outcome.NewValue),
		zap.Strings("milestones", outcome.MilestonesAwarded),
		zap.Strings("synergies_unlocked", outcome.SynergiesUnlocked))
	return outcome, nil
}

// duplicateOutcome echoes the prior state for a replayed idempotency key
// as a successful no-change result.
func (s *Service) duplicateOutcome(sys *CrystalSystem, draft GrowthDraft, prior *storage.GrowthRecordRow) *GrowthOutcome {
	attr := draft.Attribute
	if prior != nil {
		attr = Attribute(prior.Attribute)
	}
	value := 0
	if c := sys.Crystals[attr]; c != nil {
		value = c.Value
	}
	s.logger.Debug("duplicate growth event ignored",
		zap.String("uid", draft.UID),
		zap.String("idempotency_key", draft.IdempotencyKey))
	return &GrowthOutcome{
		Attribute:      attr,
		NewValue:       value,
		ResonanceLevel: sys.ResonanceLevel,
		Duplicate:      true,
	}
}

// loadSystem assembles the engine aggregate from storage rows, creating a
// fresh system on first access. Attributes with no stored state start at
// the defaults.
func (s *Service) loadSystem(ctx context.Context, crystals *storage.CrystalRepo, uid string) (*CrystalSystem, error) {
	sysRow, stateRows, err := crystals.GetOrCreateSystem(ctx, uid)
	if err != nil {
		return nil, err
	}

	sys := NewCrystalSystem(uid)
	sys.ResonanceLevel = sysRow.ResonanceLevel
	sys.TotalGrowthEvents = sysRow.TotalGrowthEvents
	sys.Version = sysRow.Version
	for _, id := range sysRow.ActiveSynergies {
		sys.ActiveSynergies[id] = true
	}
	for _, row := range stateRows {
		attr := Attribute(row.Attribute)
		c, ok := sys.Crystals[attr]
		if !ok {
			return nil, InvalidGrowthRecordError{Reason: "stored crystal has unknown attribute " + row.Attribute}
		}
		c.Value = row.Value
		c.GrowthRate = row.GrowthRate
		if row.LastGrowth != nil {
			c.LastGrowth = *row.LastGrowth
		}
		for _, id := range row.Milestones {
			c.Milestones[id] = true
		}
	}
	return sys, nil
}

func (s *Service) saveSystem(ctx context.Context, crystals *storage.CrystalRepo, sys *CrystalSystem) error {
	active := make([]string, 0, len(sys.ActiveSynergies))
	for id := range sys.ActiveSynergies {
		active = append(active, id)
	}
	states := make([]storage.CrystalStateRow, 0, len(sys.Crystals))
	for _, attr := range AllAttributes {
		c := sys.Crystals[attr]
		milestones := make([]string, 0, len(c.Milestones))
		for id := range c.Milestones {
			milestones = append(milestones, id)
		}
		var last *time.Time
		if !c.LastGrowth.IsZero() {
			t := c.LastGrowth
			last = &t
		}
		states = append(states, storage.CrystalStateRow{
			UID:        sys.UID,
			Attribute:  string(attr),
			Value:      c.Value,
			GrowthRate: c.GrowthRate,
			LastGrowth: last,
			Milestones: milestones,
		})
	}

	err := crystals.SaveSystem(ctx, &storage.CrystalSystemRow{
		UID:               sys.UID,
		ResonanceLevel:    sys.ResonanceLevel,
		TotalGrowthEvents: sys.TotalGrowthEvents,
		ActiveSynergies:   active,
		Version:           sys.Version,
	}, states)
	if err != nil {
		return err
	}
	sys.Version++
	return nil
}

// syncProfileGauges mirrors the gauge values onto the profile row, the
// shape dashboard consumers read.
func (s *Service) syncProfileGauges(ctx context.Context, profiles *storage.ProfileRepo, uid string, sys *CrystalSystem) error {
	p, err := profiles.GetOrCreate(ctx, uid)
	if err != nil {
		return err
	}
	gauges := make(map[string]int, len(sys.Crystals))
	for attr, c := range sys.Crystals {
		gauges[string(attr)] = c.Value
	}
	p.CrystalGauges = gauges
	return profiles.Update(ctx, p)
}

// Status is the read model consumed by the CLI and TUI.
type Status struct {
	Profile   *storage.UserProfile
	System    *CrystalSystem
	Synergies []Synergy
}

func (s *Service) Status(ctx context.Context, uid string) (*Status, error) {
	p, err := s.profiles.GetOrCreate(ctx, uid)
	if err != nil {
		return nil, err
	}
	sys, err := s.loadSystem(ctx, s.crystals, uid)
	if err != nil {
		return nil, err
	}
	return &Status{Profile: p, System: sys, Synergies: s.synergies}, nil
}
