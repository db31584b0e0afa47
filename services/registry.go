package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/utils"
)

// MaxAvatarBytes bounds the decoded size of an embedded avatar image.
const MaxAvatarBytes = 1536 * 1024

// SearchLimit is the number of results returned for interactive admin lookup.
const SearchLimit = 5

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name        string `json:"name"`
	MotherName  string `json:"motherName"`
	PhoneNumber string `json:"phoneNumber"`
	BirthDate   string `json:"birthDate"`
	LoginCode   string `json:"loginCode"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatarUrl"`
}

// ProfileUpdate holds the self-service fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

// Registry implements member lookups and mutations on top of the store.
type Registry struct {
	store *Store
	tag   string
	log   *zap.Logger
}

// NewRegistry creates a registry deriving ids with the given community tag.
// The tag is stored in the same form NormalizeID compares against.
func NewRegistry(store *Store, tag string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, tag: NormalizeName(tag), log: logger}
}

// FindByID returns the member with the given id, compared after uppercasing and trimming.
func (r *Registry) FindByID(ctx context.Context, id string) (*models.Member, error) {
	ds, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := ds.MemberIndex(NormalizeID(id))
	if idx < 0 {
		return nil, notFoundError("ID Anggota tidak ditemukan")
	}
	m := ds.Members[idx]
	return &m, nil
}

// FindByCredentials returns the member whose id and login code both match.
// The login code comparison is exact and case-sensitive.
func (r *Registry) FindByCredentials(ctx context.Context, id, code string) (*models.Member, error) {
	ds, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx := ds.MemberIndex(NormalizeID(id))
	if idx < 0 || code == "" || !utils.CheckPassword(ds.Members[idx].LoginCode, code) {
		return nil, authError("ID Member atau Password salah")
	}
	m := ds.Members[idx]
	return &m, nil
}

// Search matches query case-insensitively against name or id and returns at
// most limit members in registration order. A non-positive limit means no bound.
func (r *Registry) Search(ctx context.Context, query string, limit int) ([]models.Member, error) {
	ds, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Member{}
	for _, m := range ds.Members {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.ID), q) {
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// List returns every member matching query, unbounded.
func (r *Registry) List(ctx context.Context, query string) ([]models.Member, error) {
	return r.Search(ctx, query, 0)
}

// Register validates the form, derives the member id and appends the new member.
func (r *Registry) Register(ctx context.Context, in RegisterInput) (*models.Member, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, validationError("Nama Lengkap tidak boleh kosong")
	case strings.TrimSpace(in.MotherName) == "":
		return nil, validationError("Nama Lengkap Ibu wajib diisi")
	case strings.TrimSpace(in.PhoneNumber) == "":
		return nil, validationError("Nomor Handphone wajib diisi")
	case strings.TrimSpace(in.BirthDate) == "":
		return nil, validationError("Tanggal Lahir harus dipilih")
	case strings.TrimSpace(in.LoginCode) == "":
		return nil, validationError("Password tidak boleh kosong")
	}
	if err := validateAvatar(in.AvatarURL); err != nil {
		return nil, err
	}

	name := NormalizeName(in.Name)
	var created models.Member
	err := r.store.Update(ctx, func(ds *models.Dataset) error {
		for _, m := range ds.Members {
			if NormalizeName(m.Name) == name {
				return conflictError("Nama %q sudah terdaftar", name)
			}
		}
		if err := ValidatePasswordStrength(in.LoginCode); err != nil {
			return err
		}
		hash, err := utils.HashPassword(in.LoginCode)
		if err != nil {
			return fmt.Errorf("hash login code: %w", err)
		}

		avatar := strings.TrimSpace(in.AvatarURL)
		if avatar == "" {
			avatar = DefaultAvatarURL(name)
		}

		created = models.Member{
			ID: DeriveID(r.tag, name, func(id string) bool {
				return ds.MemberIndex(id) >= 0
			}),
			Name:        name,
			MotherName:  NormalizeName(in.MotherName),
			PhoneNumber: strings.TrimSpace(in.PhoneNumber),
			Position:    models.PositionActiveMember,
			Points:      0,
			JoinedAt:    r.store.now().UTC().Format(time.RFC3339),
			AvatarURL:   avatar,
			Bio:         sanitizeBio(in.Bio),
			LoginCode:   hash,
			BirthDate:   strings.TrimSpace(in.BirthDate),
		}
		ds.Members = append(ds.Members, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("member registered", zap.String("member_id", created.ID))
	return &created, nil
}

// UpdateProfile changes the self-service profile fields of a member.
func (r *Registry) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.Member, error) {
	if upd.AvatarURL != nil {
		if err := validateAvatar(*upd.AvatarURL); err != nil {
			return nil, err
		}
	}
	var updated models.Member
	err := r.store.Update(ctx, func(ds *models.Dataset) error {
		idx := ds.MemberIndex(NormalizeID(id))
		if idx < 0 {
			return notFoundError("ID Anggota tidak ditemukan")
		}
		m := &ds.Members[idx]
		if upd.Bio != nil {
			m.Bio = sanitizeBio(*upd.Bio)
		}
		if upd.AvatarURL != nil {
			m.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
		}
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResetCredentials replaces a member's login code after the mother's-name
// security answer matches. The answer is compared case-insensitively after trimming.
func (r *Registry) ResetCredentials(ctx context.Context, id, motherName, newCode string) error {
	err := r.store.Update(ctx, func(ds *models.Dataset) error {
		idx := ds.MemberIndex(NormalizeID(id))
		if idx < 0 || NormalizeName(ds.Members[idx].MotherName) != NormalizeName(motherName) || strings.TrimSpace(motherName) == "" {
			return authError("ID Member atau Nama Lengkap Ibu tidak cocok")
		}
		if err := ValidatePasswordStrength(newCode); err != nil {
			return err
		}
		hash, err := utils.HashPassword(newCode)
		if err != nil {
			return fmt.Errorf("hash login code: %w", err)
		}
		ds.Members[idx].LoginCode = hash
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("login code reset", zap.String("member_id", NormalizeID(id)))
	return nil
}

// SetPosition changes a member's role tag. It is an operator action and is
// not reachable from self-service profile edits.
func (r *Registry) SetPosition(ctx context.Context, id string, pos models.Position) (*models.Member, error) {
	if !pos.Valid() {
		return nil, validationError("Posisi %q tidak dikenal", pos)
	}
	var updated models.Member
	err := r.store.Update(ctx, func(ds *models.Dataset) error {
		idx := ds.MemberIndex(NormalizeID(id))
		if idx < 0 {
			return notFoundError("ID Anggota tidak ditemukan")
		}
		ds.Members[idx].Position = pos
		updated = ds.Members[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("position changed", zap.String("member_id", updated.ID), zap.String("position", string(pos)))
	return &updated, nil
}

// DefaultAvatarURL returns the generated avatar used when a member uploads none.
func DefaultAvatarURL(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// sanitizeBio stores the bio in escaped form exactly once. Input that already
// carries entities (a client echoing the stored value) is unescaped first.
func sanitizeBio(bio string) string {
	return utils.Sanitize(html.UnescapeString(strings.TrimSpace(bio)))
}

func validateAvatar(avatar string) error {
	avatar = strings.TrimSpace(avatar)
	if !strings.HasPrefix(avatar, "data:") {
		return nil
	}
	comma := strings.IndexByte(avatar, ',')
	if comma < 0 {
		return validationError("Format foto profil tidak valid")
	}
	if base64.StdEncoding.DecodedLen(len(avatar)-comma-1) > MaxAvatarBytes {
		return validationError("Ukuran foto profil terlalu besar, maksimal 1.5MB")
	}
	return nil
}
