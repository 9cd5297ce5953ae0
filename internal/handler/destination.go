package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/images"
	"github.com/tripdiary/tripadmin/internal/service"
	"github.com/tripdiary/tripadmin/internal/validation"
)

const (
	imageField        = "image"
	maxImagesPerForm  = 10
	maxMultipartBody  = maxImagesPerForm*(5<<20) + (1 << 20) // ten 5MB images plus fields
	multipartInMemory = 32 << 20
)

type destinationHandler struct {
	destinationService *service.DestinationService
}

func NewDestinationHandler(destinationService *service.DestinationService) *destinationHandler {
	return &destinationHandler{
		destinationService: destinationService,
	}
}

type destinationForm struct {
	NameEn       string  `json:"nameEn" validate:"required,max=200"`
	NameKo       string  `json:"nameKo" validate:"required,max=200"`
	Introduction string  `json:"introduction" validate:"max=20000"`
	Latitude     float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"min=-180,max=180"`
}

func (h *destinationHandler) Destinations(w http.ResponseWriter, r *http.Request) {
	destinations, err := h.destinationService.Destinations()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, destinations, "")
}

func (h *destinationHandler) Destination(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		Error(w, r, err)
		return
	}

	destination, err := h.destinationService.Destination(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, destination, "")
}

func (h *destinationHandler) Add(w http.ResponseWriter, r *http.Request) {
	input, uploads, err := parseDestinationForm(w, r)
	if err != nil {
		Error(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	destination, err := h.destinationService.Add(input, uploads)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, destination, "tourist destination added")
}

func (h *destinationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		Error(w, r, err)
		return
	}

	input, uploads, err := parseDestinationForm(w, r)
	if err != nil {
		Error(w, r, err)
		return
	}
	defer cleanupMultipart(r)

	destination, err := h.destinationService.Update(id, input, uploads)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, destination, "tourist destination updated")
}

func (h *destinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	// Non-positive ids are left to the service, which reports them as not found
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		Error(w, r, apperror.InvalidInput("invalid id"))
		return
	}

	deleted, err := h.destinationService.Delete(id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, deleted, "tourist destination deleted")
}

// parseDestinationForm reads the multipart fields and validates every file in the image field
func parseDestinationForm(w http.ResponseWriter, r *http.Request) (service.DestinationInput, []images.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)

	err := r.ParseMultipartForm(multipartInMemory)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return service.DestinationInput{}, nil, apperror.InvalidInput("request body too large")
		}
		return service.DestinationInput{}, nil, apperror.InvalidInput("invalid multipart form")
	}

	form := destinationForm{
		NameEn:       r.FormValue("nameEn"),
		NameKo:       r.FormValue("nameKo"),
		Introduction: r.FormValue("introduction"),
	}
	form.Latitude, err = formFloat(r, "latitude")
	if err != nil {
		return service.DestinationInput{}, nil, err
	}
	form.Longitude, err = formFloat(r, "longitude")
	if err != nil {
		return service.DestinationInput{}, nil, err
	}

	err = validateStruct(&form)
	if err != nil {
		return service.DestinationInput{}, nil, err
	}

	headers := r.MultipartForm.File[imageField]
	if len(headers) > maxImagesPerForm {
		return service.DestinationInput{}, nil, apperror.InvalidInput(fmt.Sprintf("at most %d images per request", maxImagesPerForm))
	}
	for _, header := range headers {
		err = validation.ValidateFile(header, validation.ImageConstraints)
		if err != nil {
			return service.DestinationInput{}, nil, apperror.InvalidInput(fmt.Sprintf("%s: %v", header.Filename, err))
		}
	}

	input := service.DestinationInput{
		NameEn:       form.NameEn,
		NameKo:       form.NameKo,
		Introduction: form.Introduction,
		Latitude:     form.Latitude,
		Longitude:    form.Longitude,
	}
	return input, images.FromFileHeaders(headers), nil
}

func formFloat(r *http.Request, name string) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, apperror.InvalidInput(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.InvalidInput("invalid " + name)
	}
	return v, nil
}

// cleanupMultipart removes temporary files the multipart parser spilled to disk
func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
