package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/cinderlabs/cinder-client/internal/burn"
	"github.com/cinderlabs/cinder-client/internal/catalog"
	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/dashboard"
	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/incinerator"
	"github.com/cinderlabs/cinder-client/internal/pairing"
	"github.com/cinderlabs/cinder-client/internal/shared"
	"github.com/cinderlabs/cinder-client/internal/slots"
	"github.com/cinderlabs/cinder-client/internal/voting"
)

// Backend is the part of the backend API served directly to the UI.
type Backend interface {
	ApprovedCollections(ctx context.Context) ([]shared.ApprovedCollection, error)
	Proposals(ctx context.Context, account string) ([]shared.Proposal, error)
	BurnRecordsByUser(ctx context.Context, user string) ([]shared.BurnRecord, error)
	BurnRecordsAll(ctx context.Context) ([]shared.BurnRecord, error)
	BurnRecordsByAsset(ctx context.Context, assetID string) ([]shared.BurnRecord, error)
	PostLog(ctx context.Context, message string) (shared.LogMessage, error)
	Logs(ctx context.Context) ([]shared.LogMessage, error)
}

type Deps struct {
	Account      string
	Version      string
	Backend      Backend
	Catalog      *catalog.Catalog
	Slots        *slots.Allocator
	Burns        *burn.Orchestrator
	Incinerators *incinerator.Service
	Dashboard    *dashboard.State
	Votes        *voting.Service
	Pairings     *pairing.Registry
}

type Handler struct {
	d   Deps
	now func() time.Time
}

func NewHandler(d Deps) *Handler {
	return &Handler{d: d, now: time.Now}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// POST /api/pair/exchange
func (h *Handler) PairExchange(c *gin.Context) {
	var req pairExchangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}
	token, err := h.d.Pairings.Exchange(req.PairID, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true, JSONKeyToken: token, JSONKeyHeader: SessionHeader})
}

// GET /api/status
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, statusRes{
		Account:   h.d.Account,
		Version:   h.d.Version,
		Slots:     h.slotViews(),
		Dashboard: h.d.Dashboard.Snapshot(),
	})
}

// GET /api/assets?refresh=true
func (h *Handler) Assets(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		assets []shared.Asset
		err    error
	)
	if c.Query("refresh") == "true" {
		assets, err = h.d.Catalog.Refresh(ctx, h.d.Account)
	} else {
		assets, err = h.d.Catalog.Assets(ctx, h.d.Account)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: assets})
}

// GET /api/collections
func (h *Handler) Collections(c *gin.Context) {
	cols, err := h.d.Backend.ApprovedCollections(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: cols})
}

// GET /api/slots
func (h *Handler) Slots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{JSONKeyData: h.slotViews()})
}

// POST /api/slots/assign
func (h *Handler) AssignSlot(c *gin.Context) {
	var req assignSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}

	asset, found, err := h.d.Catalog.Find(c.Request.Context(), h.d.Account, req.AssetID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		writeError(c, errs.Wrapf(errNotFound, "asset %s is not burnable by %s", req.AssetID, h.d.Account))
		return
	}

	var index int
	if req.Index != nil {
		index, err = h.d.Slots.AssignAt(asset, *req.Index)
	} else {
		index, err = h.d.Slots.Assign(asset)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, JSONKeyData: h.slotViews()})
}

// POST /api/slots/:index/clear
func (h *Handler) ClearSlot(c *gin.Context) {
	index, err := slotParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.d.Burns.Busy(index) {
		writeError(c, errs.Wrapf(burn.ErrSlotBusy, "slot %d", index))
		return
	}
	if err := h.d.Slots.Clear(index); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: h.slotViews()})
}

// POST /api/slots/:index/incinerator
func (h *Handler) SetSlotIncinerator(c *gin.Context) {
	index, err := slotParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req setIncineratorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}
	if req.IncineratorID != "" {
		if _, ok := h.incinerator(c.Request.Context(), req.IncineratorID); !ok {
			writeError(c, errs.Wrapf(errNotFound, "incinerator %s", req.IncineratorID))
			return
		}
	}
	if err := h.d.Burns.SetIncinerator(index, req.IncineratorID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: h.slotViews()})
}

// POST /api/burn
func (h *Handler) Burn(c *gin.Context) {
	var req burn.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}

	attempt, err := h.d.Burns.Burn(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), burnRes{Attempt: attempt, Error: err.Error(), Code: errs.CodeOf(err)})
		return
	}
	h.refreshAfterAction(c.Request.Context())
	c.JSON(http.StatusOK, burnRes{Attempt: attempt})
}

// GET /api/incinerators
func (h *Handler) Incinerators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{JSONKeyData: h.d.Dashboard.Snapshot()})
}

// POST /api/incinerators/:id/fuel
func (h *Handler) Refuel(c *gin.Context) {
	inc, ok := h.incineratorParam(c)
	if !ok {
		return
	}
	var req fuelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}
	amount, err := costs.ParseQuantity(req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondTx(c, func(ctx context.Context) (shared.TxResult, error) {
		return h.d.Incinerators.Refuel(ctx, inc, amount)
	})
}

// POST /api/incinerators/:id/energy
func (h *Handler) Energize(c *gin.Context) {
	inc, ok := h.incineratorParam(c)
	if !ok {
		return
	}
	h.respondTx(c, func(ctx context.Context) (shared.TxResult, error) {
		return h.d.Incinerators.Energize(ctx, inc)
	})
}

// POST /api/incinerators/:id/repair
func (h *Handler) Repair(c *gin.Context) {
	inc, ok := h.incineratorParam(c)
	if !ok {
		return
	}
	var req repairReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}
	points, err := costs.ParseQuantity(req.Points)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondTx(c, func(ctx context.Context) (shared.TxResult, error) {
		return h.d.Incinerators.Repair(ctx, inc, points)
	})
}

// POST /api/incinerators/:id/stake
func (h *Handler) Stake(c *gin.Context) {
	inc, ok := h.incineratorParam(c)
	if !ok {
		return
	}
	h.respondTx(c, func(ctx context.Context) (shared.TxResult, error) {
		return h.d.Incinerators.Stake(ctx, inc)
	})
}

// POST /api/incinerators/:id/unstake
func (h *Handler) Unstake(c *gin.Context) {
	inc, ok := h.incineratorParam(c)
	if !ok {
		return
	}
	h.respondTx(c, func(ctx context.Context) (shared.TxResult, error) {
		return h.d.Incinerators.Unstake(ctx, inc)
	})
}

// GET /api/incinerators/:id/repair-status
func (h *Handler) RepairStatus(c *gin.Context) {
	st, err := h.d.Incinerators.RepairStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: st})
}

// GET /api/costs?fuel=10&repair=5
func (h *Handler) Costs(c *gin.Context) {
	fuel, err := costs.ParseQuantity(c.DefaultQuery("fuel", "0"))
	if err != nil {
		writeError(c, err)
		return
	}
	points, err := costs.ParseQuantity(c.DefaultQuery("repair", "0"))
	if err != nil {
		writeError(c, err)
		return
	}
	fuelCost, err := costs.FuelCost(fuel)
	if err != nil {
		writeError(c, err)
		return
	}
	repairCost, err := costs.RepairCost(points)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, costsRes{
		Fuel:   costs.Quantity(fuelCost, constants.TrashPrecision, constants.SymbolTrash),
		Energy: costs.Quantity(costs.EnergyCost(), constants.CinderPrecision, constants.SymbolCinder),
		Repair: costs.Quantity(repairCost, constants.CinderPrecision, constants.SymbolCinder),
	})
}

// GET /api/proposals
func (h *Handler) Proposals(c *gin.Context) {
	props, err := h.d.Backend.Proposals(c.Request.Context(), h.d.Account)
	if err != nil {
		writeError(c, err)
		return
	}
	now := h.now()
	out := make([]proposalView, 0, len(props))
	for _, p := range props {
		rem := voting.RemainingVotingTime(p.CreatedAt, now)
		out = append(out, proposalView{
			Proposal:  p,
			Remaining: rem,
			Open:      !rem.Closed,
			Prefill:   voting.PrefillFor(p),
		})
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: out})
}

// POST /api/proposals/:id/vote
func (h *Handler) Vote(c *gin.Context) {
	propID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, errs.Wrapf(errBadRequest, "proposal id %q", c.Param("id")))
		return
	}
	var req voteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}

	ctx := c.Request.Context()
	props, err := h.d.Backend.Proposals(ctx, h.d.Account)
	if err != nil {
		writeError(c, err)
		return
	}
	var (
		proposal shared.Proposal
		found    bool
	)
	for _, p := range props {
		if p.PropID == propID {
			proposal, found = p, true
			break
		}
	}
	if !found {
		writeError(c, errs.Wrapf(errNotFound, "proposal %d", propID))
		return
	}

	vote, res, err := h.d.Votes.Cast(ctx, proposal, *req.VoteFor, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	h.refreshAfterAction(ctx)
	c.JSON(http.StatusOK, voteRes{Vote: vote, TransactionID: res.TransactionID})
}

// GET /api/burnrecords?scope=user|all|asset&asset_id=
func (h *Handler) BurnRecords(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		records []shared.BurnRecord
		err     error
	)
	switch scope := c.DefaultQuery("scope", burnRecordScopeUser); scope {
	case burnRecordScopeUser:
		records, err = h.d.Backend.BurnRecordsByUser(ctx, h.d.Account)
	case burnRecordScopeAll:
		records, err = h.d.Backend.BurnRecordsAll(ctx)
	case burnRecordScopeAsset:
		assetID := strings.TrimSpace(c.Query("asset_id"))
		if assetID == "" {
			err = errs.Wrapf(errBadRequest, "asset_id is required")
			break
		}
		records, err = h.d.Backend.BurnRecordsByAsset(ctx, assetID)
	default:
		err = errs.Wrapf(errBadRequest, "unknown scope %q", scope)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: records})
}

// GET /api/log
func (h *Handler) Logs(c *gin.Context) {
	msgs, err := h.d.Backend.Logs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyData: msgs})
}

// POST /api/log
func (h *Handler) PostLog(c *gin.Context) {
	var req logReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidJSONText, JSONKeyCode: errBadRequest.Code})
		return
	}
	msg, err := h.d.Backend.PostLog(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{JSONKeyData: msg})
}

func (h *Handler) slotViews() []slotView {
	snap := h.d.Slots.Snapshot()
	pairs := h.d.Burns.Pairings()
	out := make([]slotView, 0, len(snap))
	for _, s := range snap {
		v := slotView{
			Index:         s.Index,
			Asset:         s.Asset,
			IncineratorID: pairs[s.Index],
			Busy:          h.d.Burns.Busy(s.Index),
		}
		if a, ok := h.d.Burns.Last(s.Index); ok {
			v.LastAttempt = &a
		}
		out = append(out, v)
	}
	return out
}

// incinerator looks up an owned incinerator, refreshing the dashboard once
// if it is not known yet.
func (h *Handler) incinerator(ctx context.Context, id string) (shared.Incinerator, bool) {
	if inc, ok := h.d.Dashboard.Incinerator(id); ok {
		return inc, true
	}
	if err := h.d.Dashboard.Refresh(ctx); err != nil {
		log.Warn("dashboard refresh failed", "error", err)
		return shared.Incinerator{}, false
	}
	return h.d.Dashboard.Incinerator(id)
}

func (h *Handler) incineratorParam(c *gin.Context) (shared.Incinerator, bool) {
	id := c.Param("id")
	inc, ok := h.incinerator(c.Request.Context(), id)
	if !ok {
		writeError(c, errs.Wrapf(errNotFound, "incinerator %s", id))
		return shared.Incinerator{}, false
	}
	return inc, true
}

func (h *Handler) respondTx(c *gin.Context, fn func(ctx context.Context) (shared.TxResult, error)) {
	ctx := c.Request.Context()
	res, err := fn(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	h.refreshAfterAction(ctx)
	c.JSON(http.StatusOK, txRes{TransactionID: res.TransactionID})
}

// refreshAfterAction re-fetches balances and incinerators after anything
// that spends tokens.
func (h *Handler) refreshAfterAction(ctx context.Context) {
	if err := h.d.Dashboard.Refresh(ctx); err != nil {
		log.Warn("dashboard refresh after action failed", "error", err)
	}
}
