package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	apperrors "github.com/vladimiradmaev/nutriscan/internal/errors"
)

// Client message types
const (
	MsgStartScan    = "start_scan"
	MsgCameraDenied = "camera_denied"
	MsgToggleCamera = "toggle_camera"
	MsgCancelScan   = "cancel_scan"
	MsgFrame        = "frame"
	MsgCapture      = "capture"
	MsgSearch       = "search"
	MsgDailyReport  = "daily_report"
	MsgGoalGuide    = "goal_guide"
	MsgOpenHistory  = "open_history"
	MsgReset        = "reset"
	MsgSetGoal      = "set_goal"
	MsgSetTheme     = "set_theme"
	MsgToggleTheme  = "toggle_theme"
)

// Server message types
const (
	MsgState = "state"
	MsgError = "error"
)

type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type serverMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type messageData struct {
	Image string `json:"image"`
	Query string `json:"query"`
	ID    string `json:"id"`
	Goal  string `json:"goal"`
	Theme string `json:"theme"`
}

type client struct {
	conn    *websocket.Conn
	sess    *app.Session
	frames  *capture.FrameDevice
	logger  *slog.Logger
	writeMu sync.Mutex
}

// process runs the client's commands one at a time, in arrival order.
func (c *client) process(ctx context.Context, queue <-chan clientMessage) {
	for msg := range queue {
		if ctx.Err() != nil {
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *client) handle(ctx context.Context, msg clientMessage) {
	var data messageData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid message data", "")
			return
		}
	}

	ctrl := c.sess.Controller
	var err error
	switch msg.Type {
	case MsgStartScan:
		c.frames.Allow()
		err = ctrl.StartScan(ctx)
	case MsgCameraDenied:
		c.frames.Deny()
		err = ctrl.StartScan(ctx)
	case MsgToggleCamera:
		err = ctrl.ToggleCamera(ctx)
	case MsgCancelScan:
		err = ctrl.CancelScan()
	case MsgFrame:
		err = c.pushFrame(data.Image)
	case MsgCapture:
		if data.Image != "" {
			if err = c.pushFrame(data.Image); err != nil {
				break
			}
		}
		err = ctrl.Capture(ctx)
	case MsgSearch:
		err = ctrl.Search(ctx, data.Query)
	case MsgDailyReport:
		err = ctrl.GenerateDailyReport(ctx)
	case MsgGoalGuide:
		err = ctrl.GenerateGoalGuide(ctx)
	case MsgOpenHistory:
		err = ctrl.OpenHistory(data.ID)
	case MsgReset:
		err = ctrl.Reset()
	case MsgSetGoal:
		err = ctrl.SetGoal(ctx, domain.Goal(data.Goal))
	case MsgSetTheme:
		err = ctrl.SetTheme(ctx, domain.Theme(data.Theme))
	case MsgToggleTheme:
		err = ctrl.ToggleTheme(ctx)
	default:
		c.sendError("Unknown message type", "")
		return
	}

	if err != nil {
		c.logger.Debug("Request rejected", "type", msg.Type, "error", err)
		c.sendError(describe(err))
	}
}

func (c *client) pushFrame(image string) error {
	if i := strings.Index(image, ","); strings.HasPrefix(image, "data:") && i >= 0 {
		image = image[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return apperrors.NewValidationError("Invalid image encoding")
	}
	if err := c.frames.PushEncoded(data); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Frame rejected: %v", err))
	}
	return nil
}

func (c *client) pushState(snap controller.Snapshot) {
	c.send(MsgState, NewStateView(snap))
}

func (c *client) sendError(message, code string) {
	c.send(MsgError, ErrorView{Message: message, Code: code})
}

func (c *client) send(msgType string, data any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(serverMessage{Type: msgType, Data: data}); err != nil {
		c.logger.Debug("Failed to write message", "type", msgType, "error", err)
	}
}

func describe(err error) (string, string) {
	switch {
	case errors.Is(err, controller.ErrBusy):
		return "Another request is in progress", "BUSY"
	case errors.Is(err, controller.ErrInvalidTransition):
		return "Not available in the current state", "INVALID_TRANSITION"
	case errors.Is(err, controller.ErrEntryNotFound):
		return "History entry not found", "NOT_FOUND"
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message, appErr.Code
	}
	return err.Error(), ""
}
