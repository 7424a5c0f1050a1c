// Package ingest implements the workflow that moves messages from stream
// sources into the ledger. All sources feed a single writer so the ledger
// only ever has one goroutine appending to it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/blockledger/business/sys/metrics"
	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/blockledger/foundation/stream"
	"golang.org/x/sync/errgroup"
)

// defaultRetryDelay is how long a pump waits after a failed fetch.
const defaultRetryDelay = time.Second

// Chain represents the ledger behavior required by the ingest workflow.
type Chain interface {
	Append(payload string) ledger.Block
	VerifyLatest() error
	Audit() error
	Len() int
	Blocks() []ledger.Block
}

// EventHandler defines a function that is called when events occur in
// the processing of messages.
type EventHandler func(v string, args ...any)

// Reporter is called with the state of the chain after every append.
type Reporter func(blocks []ledger.Block, valid bool)

// Config represents the mandatory settings required to start ingesting.
type Config struct {
	Chain           Chain
	Sources         []stream.Source
	Policy          Policy
	AuditEvery      int
	HaltOnViolation bool
	RetryDelay      time.Duration
	Metrics         *metrics.Metrics
	Reporter        Reporter
	EvHandler       EventHandler
}

// Ingest manages the consumption of messages into the chain.
type Ingest struct {
	chain           Chain
	sources         []stream.Source
	policy          Policy
	auditEvery      int
	haltOnViolation bool
	retryDelay      time.Duration
	metrics         *metrics.Metrics
	reporter        Reporter
	evHandler       EventHandler

	sinceAudit int
}

// New constructs an Ingest value ready to run.
func New(cfg Config) (*Ingest, error) {
	if cfg.Chain == nil {
		return nil, errors.New("ingest: chain is required")
	}

	if len(cfg.Sources) == 0 {
		return nil, errors.New("ingest: at least one source is required")
	}

	policy := cfg.Policy
	if policy == "" {
		policy = Substitute
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	in := Ingest{
		chain:           cfg.Chain,
		sources:         cfg.Sources,
		policy:          policy,
		auditEvery:      cfg.AuditEvery,
		haltOnViolation: cfg.HaltOnViolation,
		retryDelay:      retryDelay,
		metrics:         cfg.Metrics,
		reporter:        cfg.Reporter,
		evHandler:       ev,
	}

	if in.metrics != nil {
		in.metrics.ChainLength.Set(float64(in.chain.Len()))
	}

	return &in, nil
}

// delivery pairs a message with the source it must be committed to.
type delivery struct {
	src stream.Source
	msg stream.Message
}

// Run starts a pump per source and the single writer, and blocks until the
// context is cancelled, every source is closed, or the writer halts on an
// integrity violation.
func (in *Ingest) Run(ctx context.Context) error {
	in.evHandler("ingest: Run: started: sources[%d]", len(in.sources))
	defer in.evHandler("ingest: Run: completed")

	g, ctx := errgroup.WithContext(ctx)
	deliveries := make(chan delivery)

	var pumps sync.WaitGroup
	pumps.Add(len(in.sources))
	for _, src := range in.sources {
		g.Go(func() error {
			defer pumps.Done()
			return in.pump(ctx, src, deliveries)
		})
	}

	// The writer stops once every pump is done.
	go func() {
		pumps.Wait()
		close(deliveries)
	}()

	g.Go(func() error {
		for d := range deliveries {
			if err := in.Process(ctx, d.src, d.msg); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// Process handles a single message: applies the payload policy, appends to
// the chain, checks integrity, reports, and commits the message.
func (in *Ingest) Process(ctx context.Context, src stream.Source, msg stream.Message) error {
	if in.metrics != nil {
		in.metrics.Received.WithLabelValues(src.Name()).Inc()
	}

	d := in.policy.Decide(msg.Value)
	if !d.Append {
		in.evHandler("ingest: Process: source[%s]: topic[%s]: partition[%d]: offset[%d]: DROPPED: payload not decodable", src.Name(), msg.Topic, msg.Partition, msg.Offset)
		if in.metrics != nil {
			in.metrics.Dropped.Inc()
		}
		in.commit(ctx, src, msg)
		return nil
	}

	if d.Substituted {
		in.evHandler("ingest: Process: source[%s]: offset[%d]: payload replaced with %q", src.Name(), msg.Offset, d.Payload)
		if in.metrics != nil {
			in.metrics.Substituted.Inc()
		}
	}

	block := in.chain.Append(d.Payload)

	in.evHandler("ingest: Process: source[%s]: topic[%s]: partition[%d]: offset[%d]: blk[%d]: hash[%s]", src.Name(), msg.Topic, msg.Partition, msg.Offset, block.Index, block.Hash)
	if in.metrics != nil {
		in.metrics.Appended.Inc()
		in.metrics.ChainLength.Set(float64(block.Index + 1))
	}

	err := in.check()

	if in.reporter != nil {
		in.reporter(in.chain.Blocks(), err == nil)
	}

	in.commit(ctx, src, msg)

	if err != nil {
		in.evHandler("ingest: Process: blk[%d]: INTEGRITY VIOLATION: %s", block.Index, err)
		if in.metrics != nil {
			in.metrics.Violations.Inc()
		}

		if in.haltOnViolation {
			return fmt.Errorf("halted at blk[%d]: %w", block.Index, err)
		}
	}

	return nil
}

// =============================================================================

// check verifies the newest block and performs a full audit every
// auditEvery appends.
func (in *Ingest) check() error {
	if err := in.chain.VerifyLatest(); err != nil {
		return err
	}

	if in.auditEvery <= 0 {
		return nil
	}

	in.sinceAudit++
	if in.sinceAudit < in.auditEvery {
		return nil
	}
	in.sinceAudit = 0

	in.evHandler("ingest: check: full audit: blocks[%d]", in.chain.Len())
	if in.metrics != nil {
		in.metrics.Audits.Inc()
	}

	return in.chain.Audit()
}

// commit acknowledges the message with its source. A failed commit means
// the message may be delivered again, which the chain can't detect, so it
// is only reported.
func (in *Ingest) commit(ctx context.Context, src stream.Source, msg stream.Message) {
	if err := src.Commit(ctx, msg); err != nil {
		in.evHandler("ingest: commit: source[%s]: offset[%d]: ERROR: %s", src.Name(), msg.Offset, err)
	}
}

// pump fetches messages from the source and hands them to the writer in
// the order they were fetched.
func (in *Ingest) pump(ctx context.Context, src stream.Source, deliveries chan<- delivery) error {
	in.evHandler("ingest: pump: source[%s]: started", src.Name())
	defer in.evHandler("ingest: pump: source[%s]: completed", src.Name())

	for {
		msg, err := src.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, stream.ErrClosed) {
				return nil
			}

			in.evHandler("ingest: pump: source[%s]: ERROR: %s", src.Name(), err)
			if in.metrics != nil {
				in.metrics.FetchErrors.WithLabelValues(src.Name()).Inc()
			}

			select {
			case <-time.After(in.retryDelay):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case deliveries <- delivery{src: src, msg: msg}:
		case <-ctx.Done():
			return nil
		}
	}
}
