package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"minter/internal/domain"
	"minter/internal/infra"
)

// ContentPublisher uploads a generated image and returns its locators.
type ContentPublisher interface {
	Publish(ctx context.Context, image domain.ImagePayload, description string) (*domain.Publication, error)
}

// MintSubmitter mints a token for a metadata locator.
type MintSubmitter interface {
	Mint(ctx context.Context, tokenURI string) (*domain.MintReceipt, error)
}

// Snapshot is the observable status of the workflow.
type Snapshot struct {
	State        domain.State `json:"state"`
	Message      string       `json:"message"`
	Waiting      bool         `json:"waiting"`
	SubmissionID string       `json:"submission_id,omitempty"`
	Prompt       string       `json:"prompt,omitempty"`
	ImageURI     string       `json:"image_uri,omitempty"`
	TokenURI     string       `json:"token_uri,omitempty"`
	TxHash       string       `json:"tx_hash,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
}

// Result describes a completed submission.
type Result struct {
	ID          string
	Publication *domain.Publication
	Receipt     *domain.MintReceipt
}

// Options configures the optional collaborators of an Orchestrator.
type Options struct {
	Repository domain.MintRepository
	Archiver   domain.Archiver
	// Timeout bounds a whole submission. Zero disables it.
	Timeout time.Duration
	Logger  *infra.Logger
	Now     func() time.Time
	NewID   func() string
}

// Orchestrator drives one submission at a time through
// generating, uploading and minting.
type Orchestrator struct {
	requester domain.ImageGenerator
	publisher ContentPublisher
	minter    MintSubmitter

	repo     domain.MintRepository
	archiver domain.Archiver
	timeout  time.Duration
	logger   *infra.Logger
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	snap      Snapshot
	observers []func(Snapshot)
}

type submission struct {
	record domain.Mint
}

func NewOrchestrator(requester domain.ImageGenerator, publisher ContentPublisher, minter MintSubmitter, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Orchestrator{
		requester: requester,
		publisher: publisher,
		minter:    minter,
		repo:      opts.Repository,
		archiver:  opts.Archiver,
		timeout:   opts.Timeout,
		logger:    logger,
		now:       now,
		newID:     newID,
		snap:      Snapshot{State: domain.StateIdle},
	}
}

// OnTransition registers fn to be called with the snapshot after every
// state change. Callbacks run on the workflow goroutine.
func (o *Orchestrator) OnTransition(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.observers = append(o.observers, fn)
	o.mu.Unlock()
}

// Snapshot returns the current workflow status.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Submit runs a full submission for prompt and blocks until it finishes.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) (*Result, error) {
	sub, err := o.reserve(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return o.run(ctx, sub)
}

// Start reserves the workflow for prompt and runs the submission in the
// background. The returned id identifies the submission.
func (o *Orchestrator) Start(ctx context.Context, prompt string) (string, error) {
	sub, err := o.reserve(ctx, prompt)
	if err != nil {
		return "", err
	}
	go func() {
		_, _ = o.run(ctx, sub)
	}()
	return sub.record.ID, nil
}

// reserve claims the idle workflow for prompt and records the submission
// before any phase runs, so the id is resolvable once returned.
func (o *Orchestrator) reserve(ctx context.Context, prompt string) (*submission, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}

	o.mu.Lock()
	if o.snap.State != domain.StateIdle {
		o.mu.Unlock()
		return nil, domain.ErrWorkflowBusy
	}
	now := o.now()
	sub := &submission{record: domain.Mint{
		ID:        o.newID(),
		Prompt:    prompt,
		State:     domain.StateGenerating,
		Status:    domain.MintStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	o.snap = Snapshot{
		State:        domain.StateGenerating,
		Message:      Label(domain.StateGenerating, ""),
		Waiting:      true,
		SubmissionID: sub.record.ID,
		Prompt:       prompt,
	}
	snap, observers := o.snap, o.observersLocked()
	o.mu.Unlock()

	if o.repo != nil {
		if err := o.repo.Create(ctx, &sub.record); err != nil {
			o.logger.Warn().Err(err).Str("submission_id", sub.record.ID).Msg("workflow: record submission failed")
		}
	}
	o.notify(snap, observers)
	return sub, nil
}

func (o *Orchestrator) run(ctx context.Context, sub *submission) (*Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	log := o.logger.With().Str("submission_id", sub.record.ID).Logger()
	log.Info().Str("state", string(domain.StateGenerating)).Msg("workflow: submission started")

	image, err := o.requester.GenerateImage(ctx, sub.record.Prompt)
	if err == nil && len(image.Data) == 0 {
		err = domain.ErrEmptyPayload
	}
	if err != nil {
		return nil, o.fail(ctx, sub, fmt.Errorf("generate image: %w", err))
	}
	o.archive(ctx, sub, image)

	o.transition(ctx, sub, domain.StateUploading, func(s *Snapshot) {
		s.Waiting = true
	})
	pub, err := o.publisher.Publish(ctx, image, sub.record.Prompt)
	if err == nil && pub == nil {
		err = errors.New("publisher returned no locators")
	}
	if err != nil {
		return nil, o.fail(ctx, sub, fmt.Errorf("publish: %w", err))
	}
	sub.record.ImageURI = pub.ImageURI
	sub.record.TokenURI = pub.TokenURI
	log.Info().Str("image_uri", pub.ImageURI).Str("token_uri", pub.TokenURI).Msg("workflow: published")

	o.transition(ctx, sub, domain.StateMinting, func(s *Snapshot) {
		s.Waiting = false
		s.ImageURI = pub.ImageURI
		s.TokenURI = pub.TokenURI
	})
	receipt, err := o.minter.Mint(ctx, pub.TokenURI)
	if err == nil && receipt == nil {
		err = errors.New("minter returned no receipt")
	}
	if err != nil {
		return nil, o.fail(ctx, sub, fmt.Errorf("mint: %w", err))
	}
	sub.record.TxHash = receipt.TxHash
	sub.record.Status = domain.MintStatusSucceeded

	o.transition(ctx, sub, domain.StateIdle, func(s *Snapshot) {
		s.Waiting = false
		s.TxHash = receipt.TxHash
	})
	log.Info().Str("tx_hash", receipt.TxHash).Msg("workflow: minted")

	return &Result{ID: sub.record.ID, Publication: pub, Receipt: receipt}, nil
}

// transition moves the workflow to state, applies edit to the snapshot,
// persists the record and notifies observers.
func (o *Orchestrator) transition(ctx context.Context, sub *submission, state domain.State, edit func(*Snapshot)) {
	sub.record.State = state
	sub.record.UpdatedAt = o.now()

	o.mu.Lock()
	o.snap.State = state
	o.snap.Message = Label(state, "")
	if edit != nil {
		edit(&o.snap)
	}
	snap, observers := o.snap, o.observersLocked()
	o.mu.Unlock()

	o.logger.Debug().Str("submission_id", sub.record.ID).Str("state", string(state)).Msg("workflow: transition")
	o.persist(ctx, sub)
	o.notify(snap, observers)
}

func (o *Orchestrator) fail(ctx context.Context, sub *submission, err error) error {
	sub.record.Status = domain.MintStatusFailed
	sub.record.Error = err.Error()
	o.logger.Error().Err(err).
		Str("submission_id", sub.record.ID).
		Str("state", string(sub.record.State)).
		Msg("workflow: submission failed")

	// the record update must survive a cancelled or expired submission context
	o.transition(context.WithoutCancel(ctx), sub, domain.StateIdle, func(s *Snapshot) {
		s.Waiting = false
		s.LastError = err.Error()
	})
	return err
}

func (o *Orchestrator) persist(ctx context.Context, sub *submission) {
	if o.repo == nil {
		return
	}
	record := sub.record
	if err := o.repo.Update(ctx, &record); err != nil {
		o.logger.Warn().Err(err).Str("submission_id", record.ID).Msg("workflow: update record failed")
	}
}

func (o *Orchestrator) archive(ctx context.Context, sub *submission, image domain.ImagePayload) {
	if o.archiver == nil {
		return
	}
	key := fmt.Sprintf("mints/%s/%s", sub.record.ID, imageFilename)
	location, err := o.archiver.Write(ctx, key, image.Data)
	if err != nil {
		o.logger.Warn().Err(err).Str("submission_id", sub.record.ID).Msg("workflow: archive image failed")
		return
	}
	o.logger.Debug().Str("submission_id", sub.record.ID).Str("location", location).Msg("workflow: image archived")
}

func (o *Orchestrator) observersLocked() []func(Snapshot) {
	if len(o.observers) == 0 {
		return nil
	}
	out := make([]func(Snapshot), len(o.observers))
	copy(out, o.observers)
	return out
}

func (o *Orchestrator) notify(snap Snapshot, observers []func(Snapshot)) {
	for _, fn := range observers {
		fn(snap)
	}
}
