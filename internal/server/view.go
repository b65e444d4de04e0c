package server

import (
	"errors"

	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	apperrors "github.com/vladimiradmaev/nutriscan/internal/errors"
)

// StateView is the JSON form of a controller snapshot. History entries are
// sent without thumbnails.
type StateView struct {
	Version    uint64                    `json:"version"`
	State      string                    `json:"state"`
	Busy       bool                      `json:"busy"`
	Processing bool                      `json:"processing"`
	Progress   ProgressView              `json:"progress"`
	Goal       domain.Goal               `json:"goal"`
	Theme      domain.Theme              `json:"theme"`
	History    []domain.HistoryEntry     `json:"history"`
	Facing     string                    `json:"facing,omitempty"`
	Mode       string                    `json:"mode,omitempty"`
	Result     *domain.NutritionRecord   `json:"result,omitempty"`
	EntryID    string                    `json:"entryId,omitempty"`
	Report     *domain.DailyReportRecord `json:"report,omitempty"`
	Guide      *domain.GoalGuideRecord   `json:"guide,omitempty"`
	Error      *ErrorView                `json:"error,omitempty"`
}

type ProgressView struct {
	Percent float64 `json:"percent"`
	Stage   string  `json:"stage"`
}

type ErrorView struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewStateView converts a snapshot.
func NewStateView(snap controller.Snapshot) StateView {
	v := StateView{
		Version:    snap.Version,
		State:      snap.State.Kind().String(),
		Busy:       snap.Busy,
		Processing: snap.Processing,
		Progress:   ProgressView{Percent: snap.Progress.Percent, Stage: snap.Progress.Stage},
		Goal:       snap.Goal,
		Theme:      snap.Theme,
		History:    make([]domain.HistoryEntry, len(snap.History)),
	}
	for i, e := range snap.History {
		e.ImageThumbnail = ""
		v.History[i] = e
	}

	switch s := snap.State.(type) {
	case controller.Scanning:
		v.Facing = string(s.Facing)
	case controller.Analyzing:
		v.Mode = s.Mode.String()
	case controller.ShowingResult:
		v.Result = &s.Record
		v.EntryID = s.EntryID
	case controller.ShowingDailyReport:
		v.Report = &s.Report
	case controller.ShowingGoalGuide:
		v.Guide = &s.Guide
	case controller.Failed:
		v.Error = newErrorView(s.Err, s.Message)
	}
	return v
}

func newErrorView(err error, message string) *ErrorView {
	v := &ErrorView{Message: message}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		v.Code = appErr.Code
	}
	return v
}
