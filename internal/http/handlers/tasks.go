package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TaskBoard interface {
	ListAllOrderedByOwner(ctx context.Context) ([]task.Task, error)
	Add(ctx context.Context, name string, ownerID *int64) (task.Task, error)
	Advance(ctx context.Context, id int64) (task.Task, error)
	Delete(ctx context.Context, id int64) error
}

type TasksHandler struct {
	board TaskBoard
}

func NewTasksHandler(board TaskBoard) *TasksHandler {
	return &TasksHandler{board: board}
}

var boardColumns = []task.Category{task.CategoryToDo, task.CategoryDoing, task.CategoryDone}

// Home renders every task on the board, split into one column per category.
func (h *TasksHandler) Home(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	tasks, err := h.board.ListAllOrderedByOwner(cctx)
	if err != nil {
		respondInternalPage(ctx, err)
		return
	}

	render(ctx, http.StatusOK, "index.html", page{
		Title:   "Board",
		Columns: groupByCategory(tasks),
	})
}

func groupByCategory(tasks []task.Task) []column {
	cols := make([]column, len(boardColumns))
	index := make(map[task.Category]int, len(boardColumns))

	for i, c := range boardColumns {
		cols[i] = column{Category: c}
		index[c] = i
	}

	for _, t := range tasks {
		i, ok := index[t.Category]
		if !ok {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}

	return cols
}

// Add creates a task owned by the caller. A GET just goes back to the board.
func (h *TasksHandler) Add(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		ctx.Redirect(http.StatusFound, "/")
		return
	}

	var req task.CreateTaskRequest

	if _, err := BindForm(ctx, &req); err != nil {
		if middlewares.IsBodyTooLarge(err) {
			RespondErrorPage(ctx, http.StatusRequestEntityTooLarge, "That request is too large.")
			return
		}
		RespondErrorPage(ctx, http.StatusBadRequest, "A task needs a name of at most 250 characters.")
		return
	}

	owner := middlewares.CurrentUser(ctx)

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	_, err := h.board.Add(cctx, req.Name, &owner.ID)
	switch {
	case err == nil:
		ctx.Redirect(http.StatusFound, "/")
	case errors.Is(err, task.ErrEmptyName):
		RespondErrorPage(ctx, http.StatusBadRequest, "A task needs a name of at most 250 characters.")
	case errors.Is(err, task.ErrDuplicateName):
		RespondErrorPage(ctx, http.StatusConflict, "A task with that name already exists.")
	case errors.Is(err, task.ErrOwnerNotFound):
		RespondErrorPage(ctx, http.StatusUnauthorized, "Your account no longer exists. Please register again.")
	default:
		respondInternalPage(ctx, err)
	}
}

// Update advances the task to its next category.
func (h *TasksHandler) Update(ctx *gin.Context) {
	id, ok := bindTaskID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	if _, err := h.board.Advance(cctx, id); err != nil {
		respondTaskErr(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, "/")
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	id, ok := bindTaskID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	if err := h.board.Delete(cctx, id); err != nil {
		respondTaskErr(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, "/")
}

// APIList serves the board as JSON for scripts and polling clients.
func (h *TasksHandler) APIList(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	tasks, err := h.board.ListAllOrderedByOwner(cctx)
	if err != nil {
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	if tasks == nil {
		tasks = []task.Task{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": tasks,
		"count": len(tasks),
	})
}

// bindTaskID treats a malformed id like an unknown one.
func bindTaskID(ctx *gin.Context) (int64, bool) {
	var p task.IDParam

	if err := ctx.ShouldBindUri(&p); err != nil {
		RespondErrorPage(ctx, http.StatusNotFound, "That task does not exist.")
		return 0, false
	}

	return p.ID, true
}

func respondTaskErr(ctx *gin.Context, err error) {
	if errors.Is(err, task.ErrNotFound) {
		RespondErrorPage(ctx, http.StatusNotFound, "That task does not exist.")
		return
	}

	respondInternalPage(ctx, err)
}
