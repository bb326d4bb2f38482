package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// WriteJSON renders v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// OK writes a 200 response with v as the body.
func OK(w http.ResponseWriter, r *http.Request, v any) {
	WriteJSON(w, r, http.StatusOK, v)
}
