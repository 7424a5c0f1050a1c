// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/blockledger/business/sys/validate"
	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/ardanlabs/blockledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/stream"
	"github.com/ardanlabs/blockledger/foundation/stream/queue"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *ledger.Ledger
	Queue  *queue.Queue
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Chain returns every block along with the validity of the chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.Ledger.Blocks()

	resp := chain{
		Length:    len(blocks),
		Valid:     h.Ledger.IsValid(),
		Algorithm: h.Ledger.Algorithm().String(),
		Blocks:    blocks,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate audits the full chain and reports every block that fails.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Valid:      true,
		Violations: []violation{},
	}

	if err := h.Ledger.Audit(); err != nil {
		resp.Valid = false

		var merr *multierror.Error
		if !errors.As(err, &merr) {
			return fmt.Errorf("audit: %w", err)
		}

		for _, e := range merr.Errors {
			vio := violation{Index: -1, Error: e.Error()}

			var ie *ledger.IntegrityError
			if errors.As(e, &ie) {
				vio.Index = ie.Index
			}

			resp.Violations = append(resp.Violations, vio)
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Latest returns the newest block in the chain.
func (h Handlers) Latest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Ledger.Latest(), http.StatusOK)
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.New(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	block, err := h.Ledger.Block(index)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.New(err, http.StatusNotFound)
		}
		return fmt.Errorf("block[%d]: %w", index, err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitPayload queues the payload for the ingest workflow to append.
func (h Handlers) SubmitPayload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var np NewPayload
	if err := web.Decode(r, &np); err != nil {
		return errs.New(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return err
	}

	offset, err := h.Queue.Publish(ctx, []byte(*np.Payload))
	if err != nil {
		if errors.Is(err, stream.ErrClosed) {
			return errs.New(errors.New("ledger is not accepting payloads"), http.StatusServiceUnavailable)
		}
		return fmt.Errorf("publish: %w", err)
	}

	h.Log.Infow("submit payload", "traceid", v.TraceID, "source", h.Queue.Name(), "offset", offset, "size", len(*np.Payload))

	resp := queued{
		Status: "payload queued",
		Source: h.Queue.Name(),
		Offset: offset,
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
