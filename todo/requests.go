package todo

import (
	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/mediator"
)

// CreateTodoList creates a new list and returns its ID.
type CreateTodoList struct {
	Title string `json:"title" validate:"required,max=200"`
	// Colour is an optional hex colour code. White is used when it's empty.
	Colour string `json:"colour,omitempty"`
}

// UpdateTodoList changes the title or colour of a list. Empty fields are left
// unchanged.
type UpdateTodoList struct {
	ID     uint64 `json:"id" validate:"required"`
	Title  string `json:"title" validate:"max=200"`
	Colour string `json:"colour,omitempty"`
}

// DeleteTodoList removes a list and all of its items.
type DeleteTodoList struct {
	ID uint64 `json:"id" validate:"required"`
}

// PurgeTodoLists removes every list. It returns the number of removed lists.
type PurgeTodoLists struct{}

// CreateTodoItem adds an item to a list and returns its ID.
type CreateTodoItem struct {
	ListID uint64 `json:"listId" validate:"required"`
	Title  string `json:"title" validate:"required,max=200"`
}

// UpdateTodoItem changes the title or completion state of an item. Nil or
// empty fields are left unchanged.
type UpdateTodoItem struct {
	ID    uint64  `json:"id" validate:"required"`
	Title *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Done  *bool   `json:"done,omitempty"`
}

// UpdateTodoItemDetail moves an item to another list, and changes its priority
// and note. A zero ListID keeps the item in its list, and a nil Note keeps
// the existing note.
type UpdateTodoItemDetail struct {
	ID       uint64               `json:"id" validate:"required"`
	ListID   uint64               `json:"listId"`
	Priority models.PriorityLevel `json:"priority" validate:"gte=0,lte=3"`
	Note     *string              `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// DeleteTodoItem removes an item.
type DeleteTodoItem struct {
	ID uint64 `json:"id" validate:"required"`
}

// GetTodos returns all lists with their items, and the lookup values needed
// to edit them.
type GetTodos struct{}

// GetTodoItemsWithPagination returns a page of brief items of a list ordered
// by title.
type GetTodoItemsWithPagination struct {
	ListID     uint64 `json:"listId" validate:"required"`
	PageNumber int    `json:"pageNumber" validate:"gte=1"`
	PageSize   int    `json:"pageSize" validate:"gte=1"`
}

// ExportTodos renders the items of a list as a downloadable file.
type ExportTodos struct {
	ListID uint64 `json:"listId" validate:"required"`
	// Format is either "csv" or "pdf". It defaults to "csv".
	Format string `json:"format,omitempty" validate:"omitempty,oneof=csv pdf"`
}

// Default pagination values.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// NewGetTodoItemsWithPagination returns a query for the first page of items
// of a list.
func NewGetTodoItemsWithPagination(listID uint64) GetTodoItemsWithPagination {
	return GetTodoItemsWithPagination{
		ListID: listID, PageNumber: DefaultPageNumber, PageSize: DefaultPageSize,
	}
}

// AuthorizationRule implements mediator.Authorized.
func (CreateTodoList) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (UpdateTodoList) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (DeleteTodoList) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized. Only administrators that
// satisfy the CanPurge policy can purge lists.
func (PurgeTodoLists) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.AuthorizationRule{Roles: "Administrator", Policies: "CanPurge"}
}

// AuthorizationRule implements mediator.Authorized.
func (CreateTodoItem) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (UpdateTodoItem) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (UpdateTodoItemDetail) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (DeleteTodoItem) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (GetTodos) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (GetTodoItemsWithPagination) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}

// AuthorizationRule implements mediator.Authorized.
func (ExportTodos) AuthorizationRule() mediator.AuthorizationRule {
	return mediator.Authenticated
}
