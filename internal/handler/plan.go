package handler

import (
	"net/http"
	"time"

	"github.com/tripdiary/tripadmin/internal/ctxkeys"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/service"
)

const dateLayout = "2006-01-02"

type planHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *planHandler {
	return &planHandler{
		planService: planService,
	}
}

type planRequest struct {
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Destination string `json:"destination" validate:"required,max=200"`
}

// toPlan parses the dates; the validator has already checked their format
func (req planRequest) toPlan(username string) *model.TravelPlan {
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	return &model.TravelPlan{
		Username:    username,
		StartDate:   start,
		EndDate:     end,
		Destination: req.Destination,
	}
}

type locationRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Location string `json:"location" validate:"required,max=200"`
}

func (h *planHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	plan, err := h.planService.CreatePlan(req.toPlan(ctxkeys.Caller(r.Context()).Username))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, plan, "travel plan created")
}

func (h *planHandler) Update(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req planRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	username := ctxkeys.Caller(r.Context()).Username
	plan, err := h.planService.UpdatePlan(planID, username, req.toPlan(username))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, plan, "travel plan updated")
}

func (h *planHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planId")
	if err != nil {
		Error(w, r, err)
		return
	}

	var req locationRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		Error(w, r, err)
		return
	}

	date, _ := time.Parse(dateLayout, req.Date)
	location, err := h.planService.CreateLocation(ctxkeys.Caller(r.Context()).Username, &model.TravelLocation{
		PlanID:   planID,
		Date:     date,
		Location: req.Location,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, location, "travel location added")
}

func (h *planHandler) PlansByUsername(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planService.PlansByUsername(r.PathValue("username"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, plans, "")
}

func (h *planHandler) Locations(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planId")
	if err != nil {
		Error(w, r, err)
		return
	}

	locations, err := h.planService.LocationsByPlan(planID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, locations, "")
}
