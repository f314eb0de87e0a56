package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/usecase"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// maxUploadBytes bounds the audio part of a request; 5 s of 16 kHz stereo
// 16-bit PCM is well under 1 MiB.
const maxUploadBytes = 8 << 20

// GateHandler serves voice enrollment and authentication.
type GateHandler struct {
	enroll   *usecase.EnrollUsecase
	gate     *usecase.LockoutController
	recorder *usecase.Recorder
	sessions *usecase.SessionUsecase
}

// NewGateHandler registers the gate routes to the provided echo group.
func NewGateHandler(e *echo.Group, en *usecase.EnrollUsecase, g *usecase.LockoutController, r *usecase.Recorder, s *usecase.SessionUsecase) {
	handler := &GateHandler{enroll: en, gate: g, recorder: r, sessions: s}

	e.POST("/enroll", handler.Enroll)
	e.POST("/authenticate", handler.Authenticate)
}

// enrollRequest is the multipart form for enrollment; the WAV travels in the "audio" part.
type enrollRequest struct {
	Username   string `form:"username" validate:"required"`
	Passphrase string `form:"passphrase" validate:"required"`
}

// authenticateRequest is the multipart form for authentication.
type authenticateRequest struct {
	Username string `form:"username" validate:"required"`
}

// authenticateResponse carries the decision and, on a grant, the new session.
type authenticateResponse struct {
	domain.Decision
	Session *domain.SessionResponse `json:"session,omitempty"`
}

// Enroll validates the spoken passphrase and stores the caller's voice profile.
func (h *GateHandler) Enroll(c echo.Context) error {
	var req enrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return invalidInput(c, err)
	}

	w, err := h.capture(c)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.enroll.Enroll(c.Request().Context(), req.Username, w, req.Passphrase)
	if err != nil {
		return writeError(c, err)
	}

	switch {
	case res.OK:
		return c.JSON(http.StatusOK, res)
	case res.Reason == domain.ReasonInvalidInput:
		return c.JSON(http.StatusBadRequest, res)
	default:
		return c.JSON(http.StatusUnprocessableEntity, res)
	}
}

// Authenticate runs the gate and issues a session on a grant.
func (h *GateHandler) Authenticate(c echo.Context) error {
	var req authenticateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return invalidInput(c, err)
	}

	w, err := h.capture(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	d, err := h.gate.Authenticate(ctx, req.Username, w)
	if err != nil {
		return writeError(c, err)
	}

	switch {
	case d.Granted:
		session, err := h.sessions.IssueUser(ctx, req.Username)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, authenticateResponse{Decision: d, Session: session})
	case d.Reason == domain.ReasonTooManyAttempts:
		return c.JSON(http.StatusTooManyRequests, authenticateResponse{Decision: d})
	case d.Reason == domain.ReasonInvalidInput:
		return c.JSON(http.StatusBadRequest, authenticateResponse{Decision: d})
	default:
		return c.JSON(http.StatusUnauthorized, authenticateResponse{Decision: d})
	}
}

// capture reads the uploaded WAV through the recorder, so uploads are held to
// the same duration and sample rate as live capture.
func (h *GateHandler) capture(c echo.Context) (audio.Waveform, error) {
	fh, err := c.FormFile("audio")
	if err != nil {
		return audio.Waveform{}, errMissingAudio
	}
	if fh.Size > maxUploadBytes {
		return audio.Waveform{}, errAudioTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return audio.Waveform{}, err
	}
	defer f.Close()

	return h.recorder.Record(c.Request().Context(), audio.WAVCapture{R: f})
}

var (
	errMissingAudio  = errors.New("missing audio file")
	errAudioTooLarge = errors.New("audio file too large")
)
