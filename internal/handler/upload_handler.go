package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "tienda/internal/errors"
	"tienda/internal/storage"
)

// UploadHandler handles image ingestion endpoints.
type UploadHandler struct {
	store *storage.Store
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store *storage.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadURLRequest represents a remote-image ingestion request.
type UploadURLRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// UploadResponse carries the relative URL of the stored image.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload godoc
// @Summary Upload an image file
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNoFile)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	url, err := h.store.SaveUpload(file)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, UploadResponse{URL: url})
}

// UploadFromURL godoc
// @Summary Download a remote image and store it locally
// @Tags uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadURLRequest true "Remote image URL"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload-url [post]
func (h *UploadHandler) UploadFromURL(c echo.Context) error {
	var req UploadURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	url, err := h.store.FetchRemote(c.Request().Context(), req.ImageURL)
	if err != nil {
		// Download and write failures surface as 500 with the reason attached.
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, UploadResponse{URL: url})
}
