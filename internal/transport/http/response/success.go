package response

import (
	"net/http"

	"github.com/go-chi/render"
)

type Envelope struct {
	Data any `json:"data"`
}

// Detail is the body of endpoints that only report an outcome.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// OK writes a 200 response with {"data": ...}.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusOK, Envelope{Data: data})
}

// Created writes a 201 response with {"data": ...}.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusCreated, Envelope{Data: data})
}

func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
