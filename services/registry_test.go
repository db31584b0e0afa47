package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalougata/klgt-portal/models"
)

func TestRegister_CreatesActiveMember(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	ctx := context.Background()

	m, err := reg.Register(ctx, validInput("  budi santoso "))
	require.NoError(t, err)

	assert.Equal(t, "KLGT-BUDISANTOSO", m.ID)
	assert.Equal(t, "BUDI SANTOSO", m.Name)
	assert.Equal(t, "SITI AMINAH", m.MotherName)
	assert.Equal(t, models.PositionActiveMember, m.Position)
	assert.Zero(t, m.Points)
	assert.Equal(t, "2025-03-14T09:30:00Z", m.JoinedAt)
	assert.Equal(t, DefaultAvatarURL("BUDI SANTOSO"), m.AvatarURL)
	assert.NotEqual(t, "abcde1", m.LoginCode, "login code is stored hashed")

	got, err := reg.FindByID(ctx, " klgt-budisantoso ")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestRegister_RequiredFields(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)

	cases := map[string]func(in *RegisterInput){
		"name":     func(in *RegisterInput) { in.Name = " " },
		"mother":   func(in *RegisterInput) { in.MotherName = "" },
		"phone":    func(in *RegisterInput) { in.PhoneNumber = "" },
		"birth":    func(in *RegisterInput) { in.BirthDate = "" },
		"password": func(in *RegisterInput) { in.LoginCode = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput("Andi")
			mutate(&in)
			_, err := reg.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	ds, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Members)
}

func TestRegister_DuplicateNameConflicts(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	mustRegister(t, reg, "Andi")

	_, err := reg.Register(context.Background(), validInput("  aNDi "))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_WeakPassword(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	in := validInput("Andi")
	in.LoginCode = "abc12"

	_, err := reg.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_IDCollisionGetsSuffix(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	first := mustRegister(t, reg, "Andi Wijaya")
	// a different name that compacts to the same id
	second := mustRegister(t, reg, "AndiWijaya")

	assert.Equal(t, "KLGT-ANDIWIJAYA", first.ID)
	assert.Regexp(t, `^KLGT-ANDIWIJAYA-\d{3}$`, second.ID)
}

func TestRegister_AvatarTooLarge(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	in := validInput("Andi")
	in.AvatarURL = "data:image/png;base64," + strings.Repeat("A", 2*1024*1024+4)

	_, err := reg.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in.AvatarURL = "data:image/png;base64,iVBORw0KGgo="
	m, err := reg.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.AvatarURL, m.AvatarURL)
}

func TestRegister_SanitizesBio(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	in := validInput("Andi")
	in.Bio = "<script>alert(1)</script>Striker"

	m, err := reg.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Striker", m.Bio)
}

func TestFindByCredentials(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	m := mustRegister(t, reg, "Andi")
	ctx := context.Background()

	got, err := reg.FindByCredentials(ctx, "klgt-andi", "abcde1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = reg.FindByCredentials(ctx, m.ID, "ABCDE1")
	assert.ErrorIs(t, err, ErrAuth)
	_, err = reg.FindByCredentials(ctx, "KLGT-NOBODY", "abcde1")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestFindByCredentials_LegacyPlaintext(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	ctx := context.Background()

	ds := models.NewDataset(testNow.Year())
	ds.Members = append(ds.Members, models.Member{ID: "KLGT-LAMA", Name: "LAMA", LoginCode: "lamaa1"})
	require.NoError(t, store.Save(ctx, ds))

	_, err := reg.FindByCredentials(ctx, "KLGT-LAMA", "lamaa1")
	assert.NoError(t, err)
}

func TestSearch(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	for _, n := range []string{"Andi", "Budi", "Candra", "Dandi", "Randi", "Sandi", "Wandi"} {
		mustRegister(t, reg, n)
	}
	ctx := context.Background()

	got, err := reg.Search(ctx, "ndi", SearchLimit)
	require.NoError(t, err)
	require.Len(t, got, SearchLimit)
	assert.Equal(t, "ANDI", got[0].Name)
	assert.Equal(t, "WANDI", got[4].Name)

	got, err = reg.Search(ctx, "klgt-bud", SearchLimit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BUDI", got[0].Name)

	all, err := reg.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestUpdateProfile(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	m := mustRegister(t, reg, "Andi")
	ctx := context.Background()

	bio := "Kapten tim futsal"
	got, err := reg.UpdateProfile(ctx, m.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, got.Bio)
	assert.Equal(t, m.AvatarURL, got.AvatarURL)

	_, err = reg.UpdateProfile(ctx, "KLGT-NOBODY", ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetCredentials(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	m := mustRegister(t, reg, "Andi")
	ctx := context.Background()

	err := reg.ResetCredentials(ctx, m.ID, "Ibu Lain", "fghij2")
	assert.ErrorIs(t, err, ErrAuth)
	_, err = reg.FindByCredentials(ctx, m.ID, "abcde1")
	assert.NoError(t, err, "wrong answer leaves the code unchanged")

	err = reg.ResetCredentials(ctx, m.ID, "  siti aminah ", "abc12")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, reg.ResetCredentials(ctx, m.ID, "  siti aminah ", "fghij2"))
	_, err = reg.FindByCredentials(ctx, m.ID, "fghij2")
	assert.NoError(t, err)
	_, err = reg.FindByCredentials(ctx, m.ID, "abcde1")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestSetPosition(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	m := mustRegister(t, reg, "Andi")
	ctx := context.Background()

	got, err := reg.SetPosition(ctx, m.ID, models.PositionGoalkeeper)
	require.NoError(t, err)
	assert.Equal(t, models.PositionGoalkeeper, got.Position)

	_, err = reg.SetPosition(ctx, m.ID, models.Position("Striker"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = reg.SetPosition(ctx, "KLGT-NOBODY", models.PositionDefender)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile_BioIsNotEscapedTwice(t *testing.T) {
	store, _ := newTestStore(t)
	reg := NewRegistry(store, "KLGT", nil)
	m := mustRegister(t, reg, "Andi")
	ctx := context.Background()

	bio := "Tom & Jerry"
	got, err := reg.UpdateProfile(ctx, m.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Tom &amp; Jerry", got.Bio)

	// saving the stored value again leaves it unchanged
	for i := 0; i < 3; i++ {
		echoed := got.Bio
		got, err = reg.UpdateProfile(ctx, m.ID, ProfileUpdate{Bio: &echoed})
		require.NoError(t, err)
	}
	assert.Equal(t, "Tom &amp; Jerry", got.Bio)

	escapedScript := "&lt;script&gt;alert(1)&lt;/script&gt;Kiper"
	got, err = reg.UpdateProfile(ctx, m.ID, ProfileUpdate{Bio: &escapedScript})
	require.NoError(t, err)
	assert.Equal(t, "Kiper", got.Bio)
}
