package todo

import (
	"time"

	"go.hackfix.me/todo/db/models"
)

// TodosVM is the response of GetTodos.
type TodosVM struct {
	PriorityLevels []LookupDTO   `json:"priorityLevels"`
	Colours        []ColourDTO   `json:"colours"`
	Lists          []TodoListDTO `json:"lists"`
}

// LookupDTO is an ID and title pair.
type LookupDTO struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ColourDTO is a supported list colour.
type ColourDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TodoListDTO is a list with all of its items.
type TodoListDTO struct {
	ID     uint64        `json:"id"`
	Title  string        `json:"title"`
	Colour string        `json:"colour"`
	Items  []TodoItemDTO `json:"items"`
}

// TodoItemDTO is an item with all of its details.
type TodoItemDTO struct {
	ID       uint64     `json:"id"`
	ListID   uint64     `json:"listId"`
	Title    string     `json:"title"`
	Done     bool       `json:"done"`
	Priority int        `json:"priority"`
	Note     string     `json:"note"`
	Reminder *time.Time `json:"reminder,omitempty"`
}

// TodoItemBriefDTO is the summary of an item shown in paginated lists.
type TodoItemBriefDTO struct {
	ID     uint64 `json:"id"`
	ListID uint64 `json:"listId"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}

// ExportFile is a rendered export of a list.
type ExportFile struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

func toTodoListDTO(l *models.TodoList) TodoListDTO {
	dto := TodoListDTO{
		ID:     l.ID,
		Title:  l.Title,
		Colour: l.Colour.Code,
		Items:  make([]TodoItemDTO, 0, len(l.Items)),
	}
	for _, item := range l.Items {
		dto.Items = append(dto.Items, toTodoItemDTO(item))
	}

	return dto
}

func toTodoItemDTO(i *models.TodoItem) TodoItemDTO {
	dto := TodoItemDTO{
		ID:       i.ID,
		ListID:   i.ListID,
		Title:    i.Title,
		Done:     i.Done,
		Priority: int(i.Priority),
		Note:     i.Note,
	}
	if i.Reminder.Valid {
		reminder := i.Reminder.V
		dto.Reminder = &reminder
	}

	return dto
}

func toTodoItemBriefDTO(i *models.TodoItem) TodoItemBriefDTO {
	return TodoItemBriefDTO{ID: i.ID, ListID: i.ListID, Title: i.Title, Done: i.Done}
}

func priorityLookups() []LookupDTO {
	levels := models.PriorityLevels()
	lookups := make([]LookupDTO, 0, len(levels))
	for _, p := range levels {
		lookups = append(lookups, LookupDTO{ID: int(p), Title: p.String()})
	}

	return lookups
}

func colourDTOs() []ColourDTO {
	colours := models.SupportedColours()
	dtos := make([]ColourDTO, 0, len(colours))
	for _, c := range colours {
		dtos = append(dtos, ColourDTO(c))
	}

	return dtos
}
