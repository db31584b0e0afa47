package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
)

// TipCount is the number of tips a coach response carries.
const TipCount = 3

// Tips is the coach payload shown on a member profile.
type Tips struct {
	Tips       []string `json:"tips"`
	Motivation string   `json:"motivation"`
	Fallback   bool     `json:"fallback"`
}

// TipsRequest is the member context sent to the tips generator.
type TipsRequest struct {
	Name     string
	Position string
	Points   int
}

// TipsGenerator produces personalised coaching tips.
type TipsGenerator interface {
	GenerateTips(ctx context.Context, req TipsRequest) (*Tips, error)
}

// FallbackTips returns the fixed payload used whenever generation fails.
func FallbackTips() Tips {
	return Tips{
		Tips: []string{
			"Tetap berlatih keras setiap hari.",
			"Jaga pola makan dan istirahat.",
			"Kerja sama tim adalah kunci.",
		},
		Motivation: "Kamu punya potensi besar untuk menjadi bintang di komunitas ini!",
		Fallback:   true,
	}
}

// Coach wraps a TipsGenerator so callers always receive a usable payload.
type Coach struct {
	gen TipsGenerator
	log *zap.Logger
}

// NewCoach creates a coach. A nil generator always yields the fallback.
func NewCoach(gen TipsGenerator, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{gen: gen, log: logger}
}

// TipsFor never fails; generator errors and incomplete answers are logged and
// replaced by FallbackTips. No retry is attempted.
func (c *Coach) TipsFor(ctx context.Context, m *models.Member) Tips {
	if c.gen == nil || m == nil {
		return FallbackTips()
	}
	tips, err := c.gen.GenerateTips(ctx, TipsRequest{
		Name:     m.Name,
		Position: string(m.Position),
		Points:   m.Points,
	})
	var clean []string
	if err == nil {
		clean, err = checkTips(tips)
	}
	if err != nil {
		c.log.Warn("coach tips unavailable, using fallback",
			zap.String("member_id", m.ID),
			zap.Error(err),
		)
		return FallbackTips()
	}
	return Tips{Tips: clean[:TipCount], Motivation: strings.TrimSpace(tips.Motivation)}
}

// checkTips drops blank tips and rejects answers with too few tips or no motivation.
func checkTips(t *Tips) ([]string, error) {
	if t == nil {
		return nil, externalError(errors.New("empty response"), "tips unavailable")
	}
	clean := make([]string, 0, len(t.Tips))
	for _, tip := range t.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			clean = append(clean, tip)
		}
	}
	if len(clean) < TipCount {
		return nil, externalError(errors.New("too few tips"), "tips unavailable")
	}
	if strings.TrimSpace(t.Motivation) == "" {
		return nil, externalError(errors.New("missing motivation"), "tips unavailable")
	}
	return clean, nil
}
