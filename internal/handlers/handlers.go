package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"githubPushRelay/internal/events"
	"githubPushRelay/internal/middleware"
	"githubPushRelay/internal/model"
	"githubPushRelay/internal/signature"
	"githubPushRelay/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const EventHeader = "X-GitHub-Event"

// Notifier fans a classified event out to a device snapshot.
type Notifier interface {
	Dispatch(ctx context.Context, ev model.NormalizedEvent, devices []string) model.BatchResult
}

type Options struct {
	Secret       string
	Strict       bool
	Tracked      events.Extensions
	DispatchWait time.Duration
}

type HTTP struct {
	registry store.Registry
	notifier Notifier
	opts     Options
	lg       *zap.Logger
}

func NewHTTP(registry store.Registry, notifier Notifier, opts Options, lg *zap.Logger) *HTTP {
	if opts.Tracked == nil {
		opts.Tracked = events.NewExtensions()
	}
	if opts.DispatchWait <= 0 {
		opts.DispatchWait = 8 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &HTTP{registry: registry, notifier: notifier, opts: opts, lg: lg}
}

// Routes mounts every endpoint on app.
func (h *HTTP) Routes(app *fiber.App) {
	app.All("/webhook/github", h.GitHubWebhook)
	app.All("/webhook/register", h.Register)
	app.All("/webhook/unregister", h.Unregister)
	app.Get("/webhook/status", h.Status)
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

func (h *HTTP) GitHubWebhook(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return methodNotAllowed(c)
	}

	deliveryID := utils.CopyString(c.Get(middleware.DeliveryHeader))
	eventName := utils.CopyString(c.Get(EventHeader))
	lg := h.lg.With(zap.String("delivery_id", deliveryID), zap.String("event", eventName))

	body := c.Body()
	if !h.authenticate(lg, body, c.Get(signature.Header)) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
	}
	if len(body) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty request body")
	}

	var raw model.RawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		lg.Info("webhook payload rejected", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON payload")
	}

	if events.IsPing(eventName) {
		lg.Info("webhook ping received")
	}

	ev := events.Classify(&raw, eventName, h.opts.Tracked)
	lg.Info("webhook classified",
		zap.String("event_type", string(ev.Type)),
		zap.String("repository", ev.RepositoryName),
		zap.String("action", ev.Action),
		zap.Bool("has_markdown_changes", ev.HasMarkdownChanges),
		zap.Int("changed_files", len(ev.ChangedFiles)),
	)

	h.dispatch(c.UserContext(), lg, ev)

	return c.JSON(fiber.Map{"status": "success", "message": "Webhook processed"})
}

// authenticate applies the signature policy. In lenient mode a missing
// header, or a missing secret, is let through as unverified; a header that is
// present but wrong is always refused.
func (h *HTTP) authenticate(lg *zap.Logger, body []byte, header string) bool {
	if !h.opts.Strict && (header == "" || h.opts.Secret == "") {
		lg.Warn("UNVERIFIED webhook accepted: signature checks are disabled",
			zap.Bool("verified", false),
			zap.Bool("signature_present", header != ""),
		)
		return true
	}
	if header == "" {
		lg.Warn("webhook rejected: missing signature", zap.Bool("verified", false))
		return false
	}
	if !signature.Verify(body, header, h.opts.Secret) {
		lg.Warn("webhook rejected: signature mismatch", zap.Bool("verified", false))
		return false
	}
	lg.Debug("webhook signature verified", zap.Bool("verified", true))
	return true
}

// dispatch runs the batch and waits for it up to DispatchWait. Attempts still
// running after that keep going; the webhook is acknowledged regardless.
func (h *HTTP) dispatch(ctx context.Context, lg *zap.Logger, ev model.NormalizedEvent) {
	devices, err := h.registry.Snapshot(ctx)
	if err != nil {
		lg.Error("device snapshot failed, skipping dispatch", zap.Error(err))
		return
	}

	done := make(chan model.BatchResult, 1)
	go func() {
		done <- h.notifier.Dispatch(context.WithoutCancel(ctx), ev, devices)
	}()

	timer := time.NewTimer(h.opts.DispatchWait)
	defer timer.Stop()
	select {
	case res := <-done:
		lg.Info("webhook dispatched",
			zap.Int("devices", len(devices)),
			zap.Int("attempted", res.Attempted()),
			zap.Int("delivered", res.Delivered()),
			zap.Int("failed", res.Failed()),
		)
	case <-timer.C:
		lg.Warn("dispatch still running, acknowledging webhook",
			zap.Int("devices", len(devices)),
			zap.Duration("waited", h.opts.DispatchWait),
		)
	}
}

func (h *HTTP) Register(c *fiber.Ctx) error {
	token, err := deviceToken(c)
	if err != nil {
		return err
	}
	res, err := h.registry.Register(c.UserContext(), token)
	if err != nil {
		h.lg.Error("device register failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "registry unavailable")
	}

	status := "registered"
	if res.AlreadyRegistered {
		status = "already_registered"
	}
	h.lg.Info("device register", zap.String("status", status), zap.Int("total_devices", res.Total))
	return c.JSON(fiber.Map{"status": status, "total_devices": res.Total})
}

func (h *HTTP) Unregister(c *fiber.Ctx) error {
	token, err := deviceToken(c)
	if err != nil {
		return err
	}
	res, err := h.registry.Unregister(c.UserContext(), token)
	if err != nil {
		h.lg.Error("device unregister failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "registry unavailable")
	}

	status := "not_found"
	if res.Found {
		status = "unregistered"
	}
	h.lg.Info("device unregister", zap.String("status", status), zap.Int("total_devices", res.Total))
	return c.JSON(fiber.Map{"status": status, "total_devices": res.Total})
}

func (h *HTTP) Status(c *fiber.Ctx) error {
	n, err := h.registry.Count(c.UserContext())
	if err != nil {
		h.lg.Error("device count failed", zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "registry unavailable")
	}
	supported := make([]string, 0, len(model.SupportedEvents))
	for _, e := range model.SupportedEvents {
		supported = append(supported, string(e))
	}
	return c.JSON(fiber.Map{
		"status":             "healthy",
		"registered_devices": n,
		"supported_events":   supported,
	})
}

func (h *HTTP) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HTTP) Ready(c *fiber.Ctx) error {
	if _, err := h.registry.Count(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// deviceToken enforces POST and a non-empty token in the JSON body.
func deviceToken(c *fiber.Ctx) (string, error) {
	if c.Method() != fiber.MethodPost {
		return "", methodNotAllowed(c)
	}
	var req model.DeviceRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	token := strings.TrimSpace(req.DeviceToken)
	if token == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "device_token is required")
	}
	return token, nil
}

func methodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, fiber.MethodPost)
	return fiber.ErrMethodNotAllowed
}
