package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

// maxFieldBytes caps a single non-file multipart field
const maxFieldBytes = 1 << 20

// AttractionHandler serves the attractions resource
type AttractionHandler struct {
	service attractions.Service
	auth    *AuthGate
	links   Links
}

// NewAttractionHandler creates a new attraction handler
func NewAttractionHandler(service attractions.Service, auth *AuthGate, links Links) *AttractionHandler {
	return &AttractionHandler{
		service: service,
		auth:    auth,
		links:   links,
	}
}

// Routes returns the routes for attractions, to be mounted at /attractions
func (h *AttractionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAttractions)
	r.Get("/{attractionId}", h.GetAttraction)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Handler)
		r.Post("/", h.CreateAttraction)
		r.Patch("/{attractionId}", h.UpdateAttraction)
		r.Delete("/{attractionId}", h.DeleteAttraction)
	})

	return r
}

// UploadRoutes returns the routes serving stored images, to be mounted at /uploads
func (h *AttractionHandler) UploadRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.GetImage)
	return r
}

// AttractionItem is a list entry with its self-link
type AttractionItem struct {
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	AttractionImage string      `json:"attractionImage,omitempty"`
	ID              string      `json:"_id"`
	Request         RequestLink `json:"request"`
}

// ListAttractionsResponse is the response body of GET /
type ListAttractionsResponse struct {
	Count       int              `json:"count"`
	Attractions []AttractionItem `json:"attractions"`
}

// CreatedAttraction is the created record echoed by POST /
type CreatedAttraction struct {
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	ID              string      `json:"_id"`
	AttractionImage string      `json:"attractionImage,omitempty"`
	Request         RequestLink `json:"request"`
}

// CreateAttractionResponse is the response body of POST /
type CreateAttractionResponse struct {
	Message           string            `json:"message"`
	CreatedAttraction CreatedAttraction `json:"createdAttraction"`
}

// GetRequestLink keeps the "types" key existing clients read.
type GetRequestLink struct {
	Types string `json:"types"`
	URL   string `json:"url"`
}

// GetAttractionResponse is the response body of GET /{id}
type GetAttractionResponse struct {
	Attraction *attractions.Attraction `json:"attraction"`
	Request    GetRequestLink          `json:"request"`
}

// UpdateAttractionResponse is the response body of PATCH /{id}
type UpdateAttractionResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// DeleteAttractionResponse is the response body of DELETE /{id}
type DeleteAttractionResponse struct {
	Message string      `json:"message"`
	Request RequestLink `json:"request"`
}

// createAttractionBody is the JSON form of a create request
type createAttractionBody struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ListAttractions returns every attraction
func (h *AttractionHandler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAttractions(r.Context())
	if err != nil {
		slog.Error("Failed to list attractions", "error", err)
		renderError(w, r, err)
		return
	}

	resp := ListAttractionsResponse{
		Count:       len(list),
		Attractions: make([]AttractionItem, 0, len(list)),
	}
	for _, a := range list {
		resp.Attractions = append(resp.Attractions, AttractionItem{
			Name:            a.Name,
			Location:        a.Location,
			AttractionImage: a.AttractionImage,
			ID:              a.ID,
			Request:         RequestLink{Type: http.MethodGet, URL: h.links.Attraction(a.ID)},
		})
	}

	render.JSON(w, r, resp)
}

// CreateAttraction creates an attraction from a multipart, JSON or urlencoded body
func (h *AttractionHandler) CreateAttraction(w http.ResponseWriter, r *http.Request) {
	req, err := h.readCreateRequest(r)
	if err != nil {
		slog.Error("Failed to read create request", "error", err)
		renderError(w, r, err)
		return
	}

	attraction, err := h.service.CreateAttraction(r.Context(), req)
	if err != nil {
		slog.Error("Failed to create attraction", "error", err)
		if req.Image != "" {
			if derr := h.service.DiscardImage(r.Context(), req.Image); derr != nil {
				slog.Warn("Failed to discard image", "image", req.Image, "error", derr)
			}
		}
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreateAttractionResponse{
		Message: "Created Attraction Successfully",
		CreatedAttraction: CreatedAttraction{
			Name:            attraction.Name,
			Location:        attraction.Location,
			ID:              attraction.ID,
			AttractionImage: attraction.AttractionImage,
			Request:         RequestLink{Type: http.MethodGet, URL: h.links.Attraction(attraction.ID)},
		},
	})
}

// readCreateRequest extracts name, location and an optional stored image.
func (h *AttractionHandler) readCreateRequest(r *http.Request) (attractions.CreateAttractionRequest, error) {
	var req attractions.CreateAttractionRequest

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		return h.readMultipart(r)
	case "application/json":
		var body createAttractionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		req.Name = body.Name
		req.Location = body.Location
		return req, nil
	default:
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("%w: %v", errInvalidBody, err)
		}
		req.Name = r.PostForm.Get("name")
		req.Location = r.PostForm.Get("location")
		return req, nil
	}
}

// readMultipart streams the parts of a multipart body. At most one file is
// accepted, under the image field. Rejected media types are skipped without
// failing the request.
func (h *AttractionHandler) readMultipart(r *http.Request) (req attractions.CreateAttractionRequest, err error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return req, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	// A stored image must not outlive a failed request.
	defer func() {
		if err != nil && req.Image != "" {
			if derr := h.service.DiscardImage(r.Context(), req.Image); derr != nil {
				slog.Warn("Failed to discard image", "image", req.Image, "error", derr)
			}
			req.Image = ""
		}
	}()

	seenFile := false
	for {
		part, perr := mr.NextPart()
		if perr == io.EOF {
			break
		}
		if perr != nil {
			return req, fmt.Errorf("%w: %v", errInvalidBody, perr)
		}

		if part.FileName() != "" {
			if part.FormName() != attractions.ImageFieldName || seenFile {
				part.Close()
				return req, fmt.Errorf("%w: field %q", attractions.ErrUnexpectedFile, part.FormName())
			}
			seenFile = true

			decision := h.service.AcceptImage(part.FileName(), part.Header.Get("Content-Type"))
			if !decision.Accepted {
				slog.Info("Image rejected", "file_name", part.FileName(), "reason", decision.Reason)
				part.Close()
				continue
			}
			if err := h.service.StoreImage(r.Context(), decision, part); err != nil {
				part.Close()
				return req, err
			}
			part.Close()
			req.Image = decision.Name
			slog.Info("Image stored", "image", decision.Name)
			continue
		}

		value, rerr := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		part.Close()
		if rerr != nil {
			return req, fmt.Errorf("%w: %v", errInvalidBody, rerr)
		}
		if len(value) > maxFieldBytes {
			return req, fmt.Errorf("%w: field %q too large", errInvalidBody, part.FormName())
		}

		switch part.FormName() {
		case "name":
			req.Name = string(value)
		case "location":
			req.Location = string(value)
		}
	}

	return req, nil
}

// GetAttraction returns one attraction
func (h *AttractionHandler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attractionId")

	attraction, err := h.service.GetAttraction(r.Context(), id)
	if err != nil {
		if errors.Is(err, attractions.ErrAttractionNotFound) {
			slog.Info("Attraction not found", "attraction_id", id)
			renderMessage(w, r, http.StatusNotFound, "No valid entry found for provided ID")
			return
		}
		slog.Error("Failed to get attraction", "attraction_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, GetAttractionResponse{
		Attraction: attraction,
		Request:    GetRequestLink{Types: http.MethodGet, URL: h.links.Attraction(attraction.ID)},
	})
}

// UpdateAttraction applies a list of {propName, value} operations
func (h *AttractionHandler) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attractionId")

	var ops []attractions.UpdateOperation
	if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
		slog.Error("Invalid update body", "attraction_id", id, "error", err)
		renderError(w, r, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	if err := h.service.UpdateAttraction(r.Context(), id, ops); err != nil {
		slog.Error("Failed to update attraction", "attraction_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, UpdateAttractionResponse{
		Message: "Attraction updated",
		URL:     h.links.Attraction(id),
	})
}

// DeleteAttraction removes an attraction. A missing record is not an error.
func (h *AttractionHandler) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attractionId")

	if err := h.service.DeleteAttraction(r.Context(), id); err != nil {
		slog.Error("Failed to delete attraction", "attraction_id", id, "error", err)
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, DeleteAttractionResponse{
		Message: "Attraction deleted",
		Request: RequestLink{
			Type: http.MethodPost,
			URL:  h.links.Collection(),
			Body: map[string]string{"name": "String", "location": "String"},
		},
	})
}

// GetImage streams a stored image
func (h *AttractionHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the parameter escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			renderMessage(w, r, http.StatusNotFound, "Image not found")
			return
		}
		name = unescaped
	}

	rc, meta, err := h.service.OpenImage(r.Context(), name)
	if err != nil {
		if errors.Is(err, attractions.ErrObjectNotFound) {
			renderMessage(w, r, http.StatusNotFound, "Image not found")
			return
		}
		slog.Error("Failed to open image", "image", name, "error", err)
		renderError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream image", "image", name, "error", err)
	}
}
