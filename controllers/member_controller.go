package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// MemberController serves the public member views.
type MemberController struct {
	portal  *services.Portal
	metrics *utils.Metrics
}

func NewMemberController(portal *services.Portal, metrics *utils.Metrics) *MemberController {
	return &MemberController{portal: portal, metrics: metrics}
}

// List returns all members, optionally filtered by ?search=.
func (m *MemberController) List(ctx *gin.Context) {
	members, err := m.portal.Registry.List(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": publicMembers(members), "total": len(members)})
}

func (m *MemberController) Profile(ctx *gin.Context) {
	p, err := m.portal.Profile(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, p)
}

// UpdateProfile edits bio and avatar of the logged-in member's own profile.
func (m *MemberController) UpdateProfile(ctx *gin.Context) {
	var req services.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	updated, err := m.portal.UpdateOwnProfile(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, updated.Public())
}

// Tips returns coaching tips; generation failures answer with the fallback payload.
func (m *MemberController) Tips(ctx *gin.Context) {
	member, err := m.portal.Registry.FindByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	tips := m.portal.Coach.TipsFor(ctx.Request.Context(), member)
	source := "generated"
	if tips.Fallback {
		source = "fallback"
	}
	m.metrics.CoachTips.WithLabelValues(source).Inc()
	utils.Success(ctx, tips)
}

func (m *MemberController) Leaderboard(ctx *gin.Context) {
	board, err := m.portal.Leaderboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": board})
}

func publicMembers(in []models.Member) []models.Member {
	out := make([]models.Member, len(in))
	for i, m := range in {
		out[i] = m.Public()
	}
	return out
}

func trimmedQuery(ctx *gin.Context, key string) string {
	return strings.TrimSpace(ctx.Query(key))
}
