package handler

import (
	"net/http"

	"github.com/tripdiary/tripadmin/internal/ctxkeys"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/service"
)

type commentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *commentHandler {
	return &commentHandler{
		commentService: commentService,
	}
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

func (h *commentHandler) Create(w http.ResponseWriter, r *http.Request) {
	diaryID, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req commentRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	comment, err := h.commentService.Create(&model.Comment{
		DiaryID:  diaryID,
		Username: ctxkeys.Caller(r.Context()).Username,
		Comment:  req.Comment,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, comment, "comment created")
}

// CommentsByDiary serves ?page=&limit=, defaulting to the first page
func (h *commentHandler) CommentsByDiary(w http.ResponseWriter, r *http.Request) {
	diaryID, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		Error(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultCommentLimit)
	if err != nil {
		Error(w, r, err)
		return
	}

	comments, err := h.commentService.CommentsByDiary(diaryID, page, limit)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, comments, "")
}

func (h *commentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req commentRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	comment, err := h.commentService.Update(&model.Comment{Comment: req.Comment}, id, ctxkeys.Caller(r.Context()).Username)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, comment, "comment updated")
}

func (h *commentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		Error(w, r, err)
		return
	}

	deleted, err := h.commentService.Delete(id, ctxkeys.Caller(r.Context()).Username)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, deleted, "comment deleted")
}

func (h *commentHandler) CommentsByUsernameAndDiary(w http.ResponseWriter, r *http.Request) {
	diaryID, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	comments, err := h.commentService.CommentsByUsernameAndDiary(r.PathValue("username"), diaryID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, comments, "")
}

func (h *commentHandler) CommentsByUsername(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.CommentsByUsername(r.PathValue("username"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, comments, "")
}

func (h *commentHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		Error(w, r, err)
		return
	}

	deleted, err := h.commentService.AdminDelete(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, deleted, "comment deleted")
}
