package httpapi

import (
	"bytes"
	"context"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Dashboard is the command surface the routes drive.
type Dashboard interface {
	SubmitSearch(ctx context.Context, city string) error
	OnHistorySelect(ctx context.Context, entry weather.HistoryEntry) error
	OnHistoryDelete(ctx context.Context, id string) error
	Render(w io.Writer) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// Every form post answers 303 to "/": outcomes, failures included, are
// painted into the document rather than returned as status codes.
func RegisterRoutes(app *fiber.App, dash Dashboard) {
	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := dash.Render(&buf); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Send(buf.Bytes())
	})

	app.Post("/search", func(c *fiber.Ctx) error {
		var form searchForm
		if err := bindForm(c, &form); err != nil {
			return err
		}
		_ = dash.SubmitSearch(c.UserContext(), form.City)
		return backToDashboard(c)
	})

	app.Post("/history/select", func(c *fiber.Ctx) error {
		var form selectForm
		if err := bindForm(c, &form); err != nil {
			return err
		}
		_ = dash.OnHistorySelect(c.UserContext(), weather.HistoryEntry{ID: form.ID, Name: form.Name})
		return backToDashboard(c)
	})

	app.Post("/history/delete", func(c *fiber.Ctx) error {
		var form deleteForm
		if err := bindForm(c, &form); err != nil {
			return err
		}
		_ = dash.OnHistoryDelete(c.UserContext(), form.ID)
		return backToDashboard(c)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// searchForm is posted by the search box. An empty or missing city is not a
// bad request: the controller ignores it like an empty submit.
type searchForm struct {
	City string `form:"city"`
}

type selectForm struct {
	ID   string `form:"id" validate:"required"`
	Name string `form:"name" validate:"required"`
}

type deleteForm struct {
	ID string `form:"id" validate:"required"`
}

func bindForm(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func backToDashboard(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusSeeOther)
}
