package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// minSearchLength is the shortest query the admin search answers.
const minSearchLength = 2

// AdminController serves the admin gate and the scan/adjust workflow.
type AdminController struct {
	portal  *services.Portal
	metrics *utils.Metrics
}

func NewAdminController(portal *services.Portal, metrics *utils.Metrics) *AdminController {
	return &AdminController{portal: portal, metrics: metrics}
}

type unlockRequest struct {
	Passcode string `json:"passcode"`
}

type scanRequest struct {
	Text string `json:"text" binding:"required"`
}

type selectRequest struct {
	ID string `json:"id" binding:"required"`
}

type awardRequest struct {
	Preset string `json:"preset" binding:"required"`
}

type deductRequest struct {
	Amount json.Number `json:"amount"`
	Reason string      `json:"reason"`
}

func (a *AdminController) Unlock(ctx *gin.Context) {
	var req unlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	err := a.portal.Admin.Unlock(ctx.Request.Context(), req.Passcode)
	a.metrics.AdminUnlocks.WithLabelValues(utils.Outcome(err)).Inc()
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"unlocked": true})
}

// Lock closes the gate and drops any pending selection.
func (a *AdminController) Lock(ctx *gin.Context) {
	if err := a.portal.Admin.Lock(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	a.portal.Scan.ClearSelection()
	utils.Success(ctx, gin.H{"unlocked": false})
}

func (a *AdminController) Status(ctx *gin.Context) {
	open, err := a.portal.Admin.IsUnlocked(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := gin.H{"unlocked": open, "presets": services.Presets}
	if sel := a.portal.Scan.Selected(); open && sel != nil {
		resp["selected"] = sel.Public()
	}
	utils.Success(ctx, resp)
}

// Scan resolves a decoded badge payload into the selected member.
func (a *AdminController) Scan(ctx *gin.Context) {
	var req scanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	m, err := a.portal.Scan.Resolve(ctx.Request.Context(), req.Text)
	switch {
	case err == nil:
		a.metrics.Scans.WithLabelValues("valid").Inc()
	case errors.Is(err, services.ErrNotFound):
		a.metrics.Scans.WithLabelValues("invalid").Inc()
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"selected": m.Public()})
}

// Search looks members up by name or id; queries shorter than two characters return nothing.
func (a *AdminController) Search(ctx *gin.Context) {
	q := trimmedQuery(ctx, "q")
	if len([]rune(q)) < minSearchLength {
		utils.Success(ctx, gin.H{"items": []models.Member{}})
		return
	}
	members, err := a.portal.Registry.Search(ctx.Request.Context(), q, services.SearchLimit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": publicMembers(members)})
}

func (a *AdminController) Select(ctx *gin.Context) {
	var req selectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	m, err := a.portal.Scan.Select(ctx.Request.Context(), req.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"selected": m.Public()})
}

func (a *AdminController) ClearSelection(ctx *gin.Context) {
	a.portal.Scan.ClearSelection()
	utils.Success(ctx, nil)
}

// Award credits a preset activity to the selected member.
func (a *AdminController) Award(ctx *gin.Context) {
	var req awardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	act, err := a.portal.Scan.AwardSelected(ctx.Request.Context(), req.Preset)
	if err != nil {
		respondError(ctx, err)
		return
	}
	a.metrics.Adjustments.WithLabelValues("award").Inc()
	utils.Success(ctx, act)
}

// Deduct subtracts points from the selected member with a mandatory reason.
func (a *AdminController) Deduct(ctx *gin.Context) {
	var req deductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	act, err := a.portal.Scan.DeductSelected(ctx.Request.Context(), req.Amount.String(), req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}
	a.metrics.Adjustments.WithLabelValues("deduct").Inc()
	utils.Success(ctx, act)
}

// Activities returns the most recent ledger entries.
func (a *AdminController) Activities(ctx *gin.Context) {
	acts, err := a.portal.Ledger.Recent(ctx.Request.Context(), services.RecentActivityLimit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": acts})
}
