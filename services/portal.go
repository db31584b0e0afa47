package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/storage"
)

// Options configures a Portal.
type Options struct {
	CommunityTag  string
	AdminPasscode string
	Tips          TipsGenerator
	Logger        *zap.Logger
}

// Portal holds the application state shared by the HTTP handlers and the CLI.
type Portal struct {
	Store    *Store
	Registry *Registry
	Ledger   *Ledger
	Points   *PointEngine
	Session  *Session
	Auth     *Auth
	Admin    *AdminGate
	Scan     *ScanWorkflow
	Coach    *Coach
}

// NewPortal wires every component over one slot backend.
func NewPortal(slots storage.Slots, opts Options) *Portal {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tag := opts.CommunityTag
	if tag == "" {
		tag = "KLGT"
	}

	store := NewStore(slots, logger.Named("store"))
	registry := NewRegistry(store, tag, logger.Named("registry"))
	engine := NewPointEngine(store, logger.Named("points"))
	session := NewSession(slots)

	return &Portal{
		Store:    store,
		Registry: registry,
		Ledger:   NewLedger(store),
		Points:   engine,
		Session:  session,
		Auth:     NewAuth(registry, session, logger.Named("auth")),
		Admin:    NewAdminGate(slots, opts.AdminPasscode, logger.Named("admin")),
		Scan:     NewScanWorkflow(registry, engine, logger.Named("scan")),
		Coach:    NewCoach(opts.Tips, logger.Named("coach")),
	}
}

// Profile is the member page: the public record, recent activities and a contact link.
type Profile struct {
	Member     models.Member          `json:"member"`
	Activities []models.PointActivity `json:"activities"`
	WhatsApp   string                 `json:"whatsappLink"`
}

// Profile assembles the profile view of one member.
func (p *Portal) Profile(ctx context.Context, id string) (*Profile, error) {
	ds, err := p.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := ds.MemberIndex(NormalizeID(id))
	if idx < 0 {
		return nil, notFoundError("ID Anggota tidak ditemukan")
	}
	m := ds.Members[idx]
	acts := activitiesFor(ds, m.ID)
	if len(acts) > ProfileActivityLimit {
		acts = acts[:ProfileActivityLimit]
	}
	return &Profile{Member: m.Public(), Activities: acts, WhatsApp: WhatsAppLink(m.PhoneNumber)}, nil
}

// Register creates a member and logs them in.
func (p *Portal) Register(ctx context.Context, in RegisterInput) (*models.Member, error) {
	m, err := p.Registry.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := p.Session.Set(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateOwnProfile edits the logged-in member's profile and refreshes the session snapshot.
func (p *Portal) UpdateOwnProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.Member, error) {
	cur, err := p.Session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil || cur.ID != NormalizeID(id) {
		return nil, authError("Hanya pemilik akun yang dapat mengubah profil")
	}
	m, err := p.Registry.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := p.Session.Set(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Leaderboard ranks all members by points.
func (p *Portal) Leaderboard(ctx context.Context) ([]Standing, error) {
	return Leaderboard(ctx, p.Store)
}
