package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/storage"
)

func newTestPortal(t *testing.T) *services.Portal {
	t.Helper()
	p := services.NewPortal(storage.NewMemorySlots(), services.Options{CommunityTag: "KLGT"})
	for _, name := range []string{"Andi", "Budi"} {
		_, err := p.Registry.Register(context.Background(), services.RegisterInput{
			Name:        name,
			MotherName:  "Siti",
			PhoneNumber: "0812",
			BirthDate:   "2000-01-01",
			LoginCode:   "abcde1",
		})
		require.NoError(t, err)
	}
	return p
}

func run(t *testing.T, p *services.Portal, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd(func() (*services.Portal, error) { return p, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAwardAndLeaderboard(t *testing.T) {
	p := newTestPortal(t)

	out, err := run(t, p, "", "award", "klgt-budi", "minsoc")
	require.NoError(t, err)
	assert.Contains(t, out, "+5 Kegiatan MINSOC (KLGT-BUDI)")

	out, err = run(t, p, "", "leaderboard")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "KLGT-BUDI")
	assert.Contains(t, lines[2], "KLGT-ANDI")
}

func TestDeduct(t *testing.T) {
	p := newTestPortal(t)

	out, err := run(t, p, "", "deduct", "KLGT-ANDI", "3", "tidak", "hadir")
	require.NoError(t, err)
	assert.Contains(t, out, "-3 Pengurangan: tidak hadir")

	_, err = run(t, p, "", "deduct", "KLGT-ANDI", "tiga", "x")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestMembers(t *testing.T) {
	p := newTestPortal(t)
	out, err := run(t, p, "", "members", "bud")
	require.NoError(t, err)
	assert.Contains(t, out, "KLGT-BUDI")
	assert.NotContains(t, out, "KLGT-ANDI")
}

func TestScan(t *testing.T) {
	p := newTestPortal(t)

	out, err := run(t, p, "nobody\nKLGT-ANDI\nKLGT-BUDI\n", "scan", "--preset", "futsal", "--loop")
	require.NoError(t, err)
	assert.Contains(t, out, "ID Anggota tidak valid! (nobody)")
	assert.Contains(t, out, "ANDI: +4 Kegiatan FUTSAL")
	assert.Contains(t, out, "BUDI: +4 Kegiatan FUTSAL")

	_, err = run(t, p, "", "scan", "--preset", "basket")
	assert.Error(t, err)
}

func TestResetCheck(t *testing.T) {
	p := newTestPortal(t)
	out, err := run(t, p, "", "reset-check")
	require.NoError(t, err)
	assert.Contains(t, out, "members=2 activities=0")
}

func TestPosition(t *testing.T) {
	p := newTestPortal(t)
	out, err := run(t, p, "", "position", "KLGT-ANDI", "Goalkeeper")
	require.NoError(t, err)
	assert.Contains(t, out, "Goalkeeper")

	_, err = run(t, p, "", "position", "KLGT-ANDI", "Striker")
	assert.ErrorIs(t, err, services.ErrValidation)
}
