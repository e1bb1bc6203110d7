package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"postly/config"
	"postly/internal/delivery/http/response"
	"postly/internal/domain/constants"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/errors"
	"postly/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	uploadFormField    = "file"
	defaultContentType = "application/octet-stream"
)

// PostHandlerParams holds dependencies for PostHandler, injected by Fx.
type PostHandlerParams struct {
	fx.In

	PostUC usecase.PostUsecase
	Config *config.Config
	Logger *slog.Logger
}

// PostHandler serves the post catalogue, ownership-scoped mutations and media.
type PostHandler struct {
	postUC usecase.PostUsecase
	urls   mediaURLBuilder
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler.
func NewPostHandler(params PostHandlerParams) *PostHandler {
	var publicBaseURL string
	if params.Config.Media != nil {
		publicBaseURL = params.Config.Media.PublicBaseURL
	}

	return &PostHandler{
		postUC: params.PostUC,
		urls:   mediaURLBuilder{publicBaseURL: publicBaseURL},
		logger: params.Logger,
	}
}

// Create handles POST /posts.
func (h *PostHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postUC.Create(c.Request().Context(), &usecase.CreatePostInput{UserID: user.ID, Text: req.Text})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, h.urls.post(post), "Post created successfully")
}

// List handles GET /posts.
func (h *PostHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}

	posts, err := h.postUC.List(c.Request().Context(), page)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.urls.posts(posts), "")
}

// ListByUser handles GET /posts/users/:userId.
func (h *PostHandler) ListByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("userId: must be a valid id")
	}

	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}

	posts, err := h.postUC.ListByUser(c.Request().Context(), userID, page)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.urls.posts(posts), "")
}

// Get handles GET /posts/:id.
func (h *PostHandler) Get(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrPostNotFound
	}

	post, err := h.postUC.Get(c.Request().Context(), postID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.urls.post(post), "")
}

// Update handles PUT /posts/:id.
func (h *PostHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := ownedPostID(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postUC.Update(c.Request().Context(), &usecase.UpdatePostInput{
		PostID: postID,
		UserID: user.ID,
		Text:   req.Text,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.urls.post(post), "Post updated successfully")
}

// Delete handles DELETE /posts/:id.
func (h *PostHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := ownedPostID(c)
	if err != nil {
		return err
	}

	if err := h.postUC.Delete(c.Request().Context(), postID, user.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Post deleted successfully")
}

// UploadMedia handles POST /posts/:id/upload with a multipart "file" field.
func (h *PostHandler) UploadMedia(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := ownedPostID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return errors.WithStack(err)
		}

		return domainerrors.ErrValidationFailed.WithDetails("file: a multipart file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "open uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	post, err := h.postUC.AttachMedia(c.Request().Context(), &usecase.AttachMediaInput{
		PostID:       postID,
		UserID:       user.ID,
		Filename:     fileHeader.Filename,
		ContentType:  contentType,
		DeclaredSize: fileHeader.Size,
		Content:      file,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, &MediaUploadResponse{
		BlobURL: h.urls.url(*post.MediaRef),
		Post:    h.urls.post(post),
	}, "File uploaded successfully")
}

// Media streams a stored blob.
func (h *PostHandler) Media(c echo.Context) error {
	obj, err := h.postUC.OpenMedia(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return errors.WithStack(err)
	}
	defer obj.Close()

	contentType := obj.Attributes.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	header := c.Response().Header()
	header.Set("Cache-Control", constants.MediaCacheControl)
	header.Set("X-Content-Type-Options", "nosniff")
	if obj.Attributes.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(obj.Attributes.Size, 10))
	}
	if !obj.Attributes.ModTime.IsZero() {
		header.Set(echo.HeaderLastModified, obj.Attributes.ModTime.UTC().Format(http.TimeFormat))
	}

	return c.Stream(http.StatusOK, contentType, obj)
}

// ShareQRCode renders a PNG QR code linking to the post.
func (h *PostHandler) ShareQRCode(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrPostNotFound
	}

	png, err := h.postUC.ShareQRCode(c.Request().Context(), postID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// ownedPostID parses the post id of a mutation. A malformed id can never match
// the ownership filter, so it gets the same answer as a miss.
func ownedPostID(c echo.Context) (uuid.UUID, error) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrPostNotFoundOrForbidden
	}

	return postID, nil
}

func pageFromQuery(c echo.Context) (usecase.PageInput, error) {
	var page usecase.PageInput
	if err := echo.QueryParamsBinder(c).
		Int("skip", &page.Skip).
		Int("limit", &page.Limit).
		BindError(); err != nil {
		return page, domainerrors.ErrValidationFailed.WithDetails("skip and limit must be integers")
	}

	return page, nil
}
