package handler

import (
	"net/http"

	"github.com/tripdiary/tripadmin/internal/ctxkeys"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/service"
)

type diaryHandler struct {
	diaryService *service.DiaryService
}

func NewDiaryHandler(diaryService *service.DiaryService) *diaryHandler {
	return &diaryHandler{
		diaryService: diaryService,
	}
}

type diaryRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=20000"`
}

func (h *diaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req diaryRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	diary, err := h.diaryService.Create(&model.Diary{Title: req.Title, Content: req.Content}, ctxkeys.Caller(r.Context()).Username, planID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, diary, "diary created")
}

func (h *diaryHandler) Diaries(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.diaryService.Diaries()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, diaries, "")
}

func (h *diaryHandler) MyDiaries(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.diaryService.MyDiaries(ctxkeys.Caller(r.Context()).Username)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, diaries, "")
}

func (h *diaryHandler) Diary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	diary, err := h.diaryService.Diary(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, diary, "")
}

// Update responds with the diary as it was before the edit
func (h *diaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req diaryRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	previous, err := h.diaryService.Update(&model.Diary{Title: req.Title, Content: req.Content}, id, ctxkeys.Caller(r.Context()).Username)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, previous, "diary updated")
}

func (h *diaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	deleted, err := h.diaryService.Delete(id, ctxkeys.Caller(r.Context()).Username)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, deleted, "diary deleted")
}

func (h *diaryHandler) DiariesByUsername(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.diaryService.DiariesByUsername(r.PathValue("username"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, diaries, "")
}

func (h *diaryHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "diaryId")
	if err != nil {
		Error(w, r, err)
		return
	}

	deleted, err := h.diaryService.AdminDelete(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, deleted, "diary deleted")
}
