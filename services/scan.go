package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
)

// ErrScannerClosed is returned by AwaitScan when the scanner stops producing
// before a member was resolved.
var ErrScannerClosed = errors.New("scanner closed")

// Scanner is a QR reader producing decoded text. The workflow starts it when
// it begins waiting for a badge and stops it when it leaves that state.
type Scanner interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop() error
}

// ScanWorkflow resolves scanned or searched members into a selection and
// applies point adjustments to the selected member.
type ScanWorkflow struct {
	registry *Registry
	engine   *PointEngine
	log      *zap.Logger

	mu       sync.Mutex
	selected *models.Member
}

func NewScanWorkflow(registry *Registry, engine *PointEngine, logger *zap.Logger) *ScanWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanWorkflow{registry: registry, engine: engine, log: logger}
}

// Resolve looks up a decoded badge payload. An unknown id returns a not-found
// error and leaves the selection as it was.
func (w *ScanWorkflow) Resolve(ctx context.Context, decodedText string) (*models.Member, error) {
	m, err := w.registry.FindByID(ctx, decodedText)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFoundError("ID Anggota tidak valid!")
		}
		return nil, err
	}
	w.setSelected(m)
	return m, nil
}

// Select enters the member-selected state from manual search.
func (w *ScanWorkflow) Select(ctx context.Context, id string) (*models.Member, error) {
	m, err := w.registry.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.setSelected(m)
	return m, nil
}

// AwaitScan starts the scanner and resolves decoded texts one at a time until
// a member is found. Unknown ids are reported through onInvalid. The scanner
// is stopped on every return path.
func (w *ScanWorkflow) AwaitScan(ctx context.Context, sc Scanner, onInvalid func(text string)) (*models.Member, error) {
	texts, err := sc.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if stopErr := sc.Stop(); stopErr != nil {
			w.log.Warn("failed to stop scanner", zap.Error(stopErr))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case text, ok := <-texts:
			if !ok {
				return nil, ErrScannerClosed
			}
			m, err := w.Resolve(ctx, text)
			if errors.Is(err, ErrNotFound) {
				if onInvalid != nil {
					onInvalid(text)
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
}

// Selected returns the member currently selected for adjustment, or nil.
func (w *ScanWorkflow) Selected() *models.Member {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return nil
	}
	m := *w.selected
	return &m
}

func (w *ScanWorkflow) ClearSelection() {
	w.setSelected(nil)
}

// AwardSelected credits a preset to the selected member and clears the selection.
func (w *ScanWorkflow) AwardSelected(ctx context.Context, preset string) (*models.PointActivity, error) {
	m := w.Selected()
	if m == nil {
		return nil, validationError("Belum ada anggota yang dipilih")
	}
	a, err := w.engine.AwardPreset(ctx, m.ID, preset)
	if err != nil {
		return nil, err
	}
	w.ClearSelection()
	return a, nil
}

// DeductSelected deducts from the selected member and clears the selection.
func (w *ScanWorkflow) DeductSelected(ctx context.Context, amountText, reason string) (*models.PointActivity, error) {
	m := w.Selected()
	if m == nil {
		return nil, validationError("Belum ada anggota yang dipilih")
	}
	a, err := w.engine.Deduct(ctx, m.ID, amountText, reason)
	if err != nil {
		return nil, err
	}
	w.ClearSelection()
	return a, nil
}

func (w *ScanWorkflow) setSelected(m *models.Member) {
	w.mu.Lock()
	w.selected = m
	w.mu.Unlock()
}

// LineScanner reads one decoded payload per line, as produced by keyboard
// wedge QR readers. Blank lines are skipped. Lines that arrive while the
// scanner is stopped wait until the next Start.
type LineScanner struct {
	r     io.Reader
	once  sync.Once
	lines chan string

	mu     sync.Mutex
	active bool
}

func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: r, lines: make(chan string)}
}

func (s *LineScanner) Start(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, errors.New("scanner already started")
	}
	s.active = true
	s.once.Do(func() { go s.read() })
	return s.lines, nil
}

func (s *LineScanner) Stop() error {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return nil
}

func (s *LineScanner) read() {
	defer close(s.lines)
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.lines <- line
	}
}
