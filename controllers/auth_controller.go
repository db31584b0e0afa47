package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/utils"
)

// AuthController serves registration, login and credential recovery.
type AuthController struct {
	portal  *services.Portal
	metrics *utils.Metrics
}

func NewAuthController(portal *services.Portal, metrics *utils.Metrics) *AuthController {
	return &AuthController{portal: portal, metrics: metrics}
}

type loginRequest struct {
	ID        string `json:"id"`
	LoginCode string `json:"loginCode"`
}

type recoverRequest struct {
	ID         string `json:"id"`
	MotherName string `json:"motherName"`
	NewCode    string `json:"newLoginCode"`
}

// Register creates a member and logs them in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	m, err := a.portal.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	a.metrics.Registrations.Inc()
	utils.Created(ctx, m.Public())
}

func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	m, err := a.portal.Auth.Login(ctx.Request.Context(), req.ID, req.LoginCode)
	a.metrics.Logins.WithLabelValues(utils.Outcome(err)).Inc()
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, m.Public())
}

func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.portal.Auth.Logout(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

// Session returns the current member snapshot, or null when logged out.
func (a *AuthController) Session(ctx *gin.Context) {
	m, err := a.portal.Session.Current(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	if m == nil {
		utils.Success(ctx, gin.H{"member": nil})
		return
	}
	utils.Success(ctx, gin.H{"member": m.Public()})
}

// Recover resets the login code via the security question. The client must log in again.
func (a *AuthController) Recover(ctx *gin.Context) {
	var req recoverRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := a.portal.Auth.Recover(ctx.Request.Context(), req.ID, req.MotherName, req.NewCode); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"mode": "login"})
}
