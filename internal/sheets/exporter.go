// Package sheets exports game scoresheets to a spreadsheet backend. An
// Exporter walks one export through checking for an existing round,
// optionally asking to overwrite it, and writing it.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

// Sheet is the spreadsheet an exporter writes to.
type Sheet interface {
	RoundExists(ctx context.Context, sheetID string, round int) (bool, error)
	WriteRound(ctx context.Context, sheetID string, sheetType SheetType, round int, cells [][]string) error
}

type State string

const (
	NotStarted        State = "notStarted"
	CheckingOverwrite State = "checkingOverwrite"
	OverwritePrompt   State = "overwritePrompt"
	Exporting         State = "exporting"
	Done              State = "done"
	Failed            State = "error"
	Cancelled         State = "cancelled"
)

// Busy reports whether an export is in progress and cannot be restarted.
func (s State) Busy() bool {
	return s == CheckingOverwrite || s == Exporting
}

var (
	ErrBusy     = errors.New("an export is already running")
	ErrNoPrompt = errors.New("no overwrite is waiting for confirmation")
)

// Request describes where to export.
type Request struct {
	SheetURL string    `json:"sheetUrl"`
	Type     SheetType `json:"type"`
	Round    int       `json:"round"`
}

// Status is what the moderator sees while exporting.
type Status struct {
	State   State     `json:"state"`
	Message string    `json:"message,omitempty"`
	SheetID string    `json:"sheetId,omitempty"`
	Type    SheetType `json:"type,omitempty"`
	Round   int       `json:"round,omitempty"`
}

type Exporter struct {
	sheet      Sheet
	logger     *slog.Logger
	onComplete func(Scoresheet)

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

// NewExporter returns an exporter writing to sheet. onComplete runs after
// every successful export with the scoresheet that was written.
func NewExporter(sheet Sheet, logger *slog.Logger, onComplete func(Scoresheet)) *Exporter {
	if onComplete == nil {
		onComplete = func(Scoresheet) {}
	}
	return &Exporter{
		sheet:      sheet,
		logger:     logger,
		onComplete: onComplete,
		status:     Status{State: NotStarted},
	}
}

func (e *Exporter) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Start checks the target round and exports ss when the round is new. When
// the round already has data the exporter stops in OverwritePrompt and waits
// for Confirm.
func (e *Exporter) Start(ctx context.Context, req Request, ss Scoresheet) (Status, error) {
	if err := ValidateURL(req.SheetURL); err != nil {
		return e.Status(), err
	}
	sheetID, ok := ParseSheetID(req.SheetURL)
	if !ok {
		return e.Status(), &quizbowl.ValidationError{Field: "sheetUrl", Message: "URL does not name a spreadsheet"}
	}
	if req.Round < 1 {
		return e.Status(), &quizbowl.ValidationError{Field: "round", Message: "Round number must be at least 1"}
	}
	sheetType, err := ParseSheetType(string(req.Type))
	if err != nil {
		return e.Status(), &quizbowl.ValidationError{Field: "type", Message: err.Error()}
	}

	ctx, err = e.begin(ctx, Status{
		State:   CheckingOverwrite,
		Message: "Checking if the round already exists...",
		SheetID: sheetID,
		Type:    sheetType,
		Round:   req.Round,
	}, false)
	if err != nil {
		return e.Status(), err
	}

	exists, err := e.sheet.RoundExists(ctx, sheetID, req.Round)
	if err != nil {
		return e.fail(ctx, err), nil
	}
	if exists {
		return e.transition(ctx, OverwritePrompt,
			fmt.Sprintf("Round %d already has scores. Continue to overwrite them.", req.Round)), nil
	}
	return e.export(ctx, ss), nil
}

// Confirm overwrites the round after an OverwritePrompt.
func (e *Exporter) Confirm(ctx context.Context, ss Scoresheet) (Status, error) {
	st := e.Status()
	ctx, err := e.begin(ctx, Status{
		State:   Exporting,
		SheetID: st.SheetID,
		Type:    st.Type,
		Round:   st.Round,
	}, true)
	if err != nil {
		return e.Status(), err
	}
	return e.export(ctx, ss), nil
}

// Cancel abandons the export. Work in flight is interrupted through its
// context.
func (e *Exporter) Cancel() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	switch e.status.State {
	case NotStarted, Done, Failed, Cancelled:
	default:
		e.status.State = Cancelled
		e.status.Message = "Export cancelled"
	}
	return e.status
}

// Reset returns a finished exporter to NotStarted.
func (e *Exporter) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.State.Busy() {
		return ErrBusy
	}
	e.status = Status{State: NotStarted}
	return nil
}

func (e *Exporter) begin(ctx context.Context, next Status, fromPrompt bool) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fromPrompt && e.status.State != OverwritePrompt {
		return nil, ErrNoPrompt
	}
	if e.status.State.Busy() {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.status = next
	return ctx, nil
}

func (e *Exporter) export(ctx context.Context, ss Scoresheet) Status {
	st := e.transition(ctx, Exporting, "Exporting...")
	if st.State != Exporting {
		return st
	}

	if err := e.sheet.WriteRound(ctx, st.SheetID, st.Type, st.Round, ss.Cells(st.Type)); err != nil {
		return e.fail(ctx, err)
	}

	st = e.transition(ctx, Done, "Export successful")
	if st.State == Done {
		e.logger.Info("exported scoresheet", "sheet_id", st.SheetID, "round", st.Round, "type", st.Type)
		e.onComplete(ss)
	}
	return st
}

// transition moves to next unless the export was cancelled meanwhile.
func (e *Exporter) transition(ctx context.Context, next State, msg string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil || e.status.State == Cancelled {
		return e.cancelledLocked()
	}
	e.status.State = next
	e.status.Message = msg
	if next != Exporting && next != CheckingOverwrite && e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return e.status
}

func (e *Exporter) fail(ctx context.Context, err error) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ctx.Err() != nil || e.status.State == Cancelled {
		return e.cancelledLocked()
	}
	e.logger.Error("scoresheet export failed", "sheet_id", e.status.SheetID, "round", e.status.Round, "error", err)
	e.status.State = Failed
	e.status.Message = "Export failed: " + err.Error()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return e.status
}

func (e *Exporter) cancelledLocked() Status {
	e.status.State = Cancelled
	e.status.Message = "Export cancelled"
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	return e.status
}
