package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.hackfix.me/todo/todo"
	"go.hackfix.me/todo/weather"
	stypes "go.hackfix.me/todo/web/server/types"
)

// TodoLists returns all lists with their items.
func (c *Client) TodoLists(ctx context.Context) (*todo.TodosVM, error) {
	var vm todo.TodosVM
	if err := c.do(ctx, http.MethodGet, "/api/todo-lists", nil, &vm); err != nil {
		return nil, err
	}

	return &vm, nil
}

// CreateTodoList creates a list and returns its ID.
func (c *Client) CreateTodoList(ctx context.Context, req todo.CreateTodoList) (uint64, error) {
	var created stypes.Created
	if err := c.do(ctx, http.MethodPost, "/api/todo-lists", req, &created); err != nil {
		return 0, err
	}

	return created.ID, nil
}

// DeleteTodoList removes a list and its items.
func (c *Client) DeleteTodoList(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/todo-lists/%d", id), nil, nil)
}

// PurgeTodoLists removes all lists and returns how many were removed.
func (c *Client) PurgeTodoLists(ctx context.Context) (int64, error) {
	var purged stypes.Purged
	if err := c.do(ctx, http.MethodDelete, "/api/todo-lists", nil, &purged); err != nil {
		return 0, err
	}

	return purged.Count, nil
}

// CreateTodoItem adds an item to a list and returns its ID.
func (c *Client) CreateTodoItem(ctx context.Context, req todo.CreateTodoItem) (uint64, error) {
	var created stypes.Created
	if err := c.do(ctx, http.MethodPost, "/api/todo-items", req, &created); err != nil {
		return 0, err
	}

	return created.ID, nil
}

// UpdateTodoItem changes the title or completion state of an item.
func (c *Client) UpdateTodoItem(ctx context.Context, req todo.UpdateTodoItem) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/todo-items/%d", req.ID), req, nil)
}

// TodoItems returns a page of items of a list.
func (c *Client) TodoItems(
	ctx context.Context, listID uint64, pageNumber, pageSize int,
) (*todo.PaginatedList[todo.TodoItemBriefDTO], error) {
	q := url.Values{}
	q.Set("listId", strconv.FormatUint(listID, 10))
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var page todo.PaginatedList[todo.TodoItemBriefDTO]
	if err := c.do(ctx, http.MethodGet, "/api/todo-items?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// WeatherForecasts returns the forecasts for the next days.
func (c *Client) WeatherForecasts(ctx context.Context) ([]weather.Forecast, error) {
	var forecasts []weather.Forecast
	if err := c.do(ctx, http.MethodGet, "/api/weather-forecasts", nil, &forecasts); err != nil {
		return nil, err
	}

	return forecasts, nil
}
