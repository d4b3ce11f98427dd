package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/AgilHD/MKBEEE/pkg/led"
)

// LEDResponse is the body of the LED endpoints.
type LEDResponse struct {
	On    bool   `json:"on"`
	Error string `json:"error,omitempty"`
}

// handleStatus returns the session status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.opts.Status != nil {
		return c.JSON(s.opts.Status())
	}

	s.frameMu.RLock()
	data := s.lastStatus
	s.frameMu.RUnlock()
	if data == nil {
		return c.JSON(fiber.Map{"running": false})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// handleFrame returns the latest annotated frame as JPEG
func (s *Server) handleFrame(c *fiber.Ctx) error {
	s.frameMu.RLock()
	frame := append([]byte(nil), s.frame...)
	at := s.frameAt
	s.frameMu.RUnlock()

	if len(frame) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no frame yet",
		})
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderLastModified, at.UTC().Format(http.TimeFormat))
	return c.Send(frame)
}

func (s *Server) handleGetLED(c *fiber.Ctx) error {
	if s.opts.LED == nil {
		return ledUnavailable(c)
	}
	return c.JSON(LEDResponse{On: s.opts.LED.State()})
}

func (s *Server) handleToggleLED(c *fiber.Ctx) error {
	if s.opts.LED == nil {
		return ledUnavailable(c)
	}
	on, err := s.opts.LED.Toggle(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(LEDResponse{On: on, Error: err.Error()})
	}
	return c.JSON(LEDResponse{On: on})
}

func (s *Server) handleSetLED(c *fiber.Ctx) error {
	on, err := led.ParseState(c.Query("state"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "state must be on or off",
		})
	}
	if s.opts.LED == nil {
		return ledUnavailable(c)
	}
	if err := s.opts.LED.Set(c.UserContext(), on); err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, led.ErrNoController) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(LEDResponse{On: on, Error: err.Error()})
	}
	return c.JSON(LEDResponse{On: on})
}

func ledUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "LED control not configured",
	})
}
