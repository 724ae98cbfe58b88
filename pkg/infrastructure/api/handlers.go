package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/felixgeelhaar/kanban/pkg/domain/board"
	"github.com/labstack/echo/v4"
)

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func listTasks(tasks TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var status board.Status
		if raw := c.QueryParam("status"); raw != "" {
			parsed, err := board.ParseStatus(raw)
			if err != nil {
				return err
			}
			status = parsed
		}

		list, err := tasks.ListTasks(c.Request().Context(), status)
		if err != nil {
			return fail("Failed to get tasks", err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func getTask(tasks TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := tasks.GetTask(c.Request().Context(), c.Param("id"))
		if err != nil {
			return fail("Failed to get task", err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func createTask(tasks TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in board.TaskInput
		if err := bindValidated(c, taskSchema, &in); err != nil {
			return err
		}

		res, err := tasks.CreateTask(c.Request().Context(), in)
		if err != nil {
			return fail("Failed to create task", err)
		}
		return c.JSON(http.StatusCreated, res.Task)
	}
}

func updateTask(tasks TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var patch board.TaskPatch
		if err := bindValidated(c, taskSchema, &patch); err != nil {
			return err
		}

		res, err := tasks.UpdateTask(c.Request().Context(), c.Param("id"), patch)
		if err != nil {
			return fail("Failed to update task", err)
		}
		return c.JSON(http.StatusOK, res.Task)
	}
}

func syncTasks(reconciler Reconciler) echo.HandlerFunc {
	return func(c echo.Context) error {
		summary, err := reconciler.Reconcile(c.Request().Context())
		if err != nil {
			return fail("Failed to sync tasks", err)
		}
		return c.JSON(http.StatusOK, summary)
	}
}

// bindValidated checks the raw body against schema before decoding it into v.
func bindValidated(c echo.Context, schema *bodySchema, v any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail("Failed to read request body", err)
	}
	if err := schema.Validate(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &board.ValidationError{Reason: "invalid JSON body"}
	}
	return nil
}
